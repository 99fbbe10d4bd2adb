package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/devmodel/internal/infrastructure/config"
	"github.com/nerrad567/devmodel/internal/infrastructure/logging"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// offlineModel builds the configured machine in-process. Logs go to the
// command's stderr at warn level so they do not mix with the output.
func offlineModel(cmd *cobra.Command, configPath string, boot bool) (*qdev.Model, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logging.NewWithWriter(cmd.ErrOrStderr(), config.LoggingConfig{
		Level:  "warn",
		Format: "text",
	}, version)

	m := newModel(cfg.Machine, log)
	if boot {
		if err := bootMachine(m, cfg.Machine, log); err != nil {
			return nil, fmt.Errorf("booting machine: %w", err)
		}
	}
	return m, nil
}

func qtreeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "qtree",
		Short: "Print the device tree of the configured machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := offlineModel(cmd, *configPath, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, heading("Device tree"))
			m.FprintTree(out)
			return nil
		},
	}
}

func qdmCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "qdm",
		Short: "List the registered device types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := offlineModel(cmd, *configPath, false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, heading("Device types"))
			m.Registry().FprintTypes(out)
			return nil
		},
	}
}

func showCmd(configPath *string) *cobra.Command {
	var full, asJSON bool
	cmd := &cobra.Command{
		Use:   "show <device-path>",
		Short: "Print the migratable state of one device",
		Long: `Print the migratable state of the device at <device-path>.

The path is either a device id or an absolute path such as
/pcihost.0/pci.0/nic.0. Buffers are shortened unless --full is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := offlineModel(cmd, *configPath, true)
			if err != nil {
				return err
			}
			res, err := m.Show(args[0], full)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			qdev.FprintShow(out, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Print buffers in full")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the state as JSON")
	return cmd
}

func deviceHelpCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "device-help <driver|?>",
		Short: "List the properties of a driver, or every user-creatable driver with ?",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := offlineModel(cmd, *configPath, false)
			if err != nil {
				return err
			}
			return m.Registry().FprintDeviceHelp(cmd.OutOrStdout(), args[0])
		},
	}
}
