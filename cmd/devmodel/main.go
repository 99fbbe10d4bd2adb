// devmodel builds a device tree from a board and a topology file, keeps it
// running under a control loop and answers inspection queries about it.
//
// The "run" command is the long-lived service: it journals lifecycle events
// to SQLite, publishes them over MQTT, writes tree metrics to InfluxDB and
// accepts device_add/device_del/show/qtree requests over MQTT and the HTTP
// API. The inspection commands boot the same machine in-process and print a
// view of it; "journal" reads the event log and "token" issues API tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/devmodel/internal/infrastructure/config"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is used when neither --config nor DEVMODEL_CONFIG is set.
	defaultConfigPath = "configs/config.yaml"
	configEnv         = "DEVMODEL_CONFIG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "devmodel",
		Short:         "Device and bus composition model",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $"+configEnv+" or "+defaultConfigPath+")")

	root.AddCommand(runCmd(&configPath))
	root.AddCommand(qtreeCmd(&configPath))
	root.AddCommand(qdmCmd(&configPath))
	root.AddCommand(showCmd(&configPath))
	root.AddCommand(deviceHelpCmd(&configPath))
	root.AddCommand(journalCmd(&configPath))
	root.AddCommand(tokenCmd(&configPath))
	return root
}

// loadConfig resolves the config path from the flag, then DEVMODEL_CONFIG,
// then the default location. A missing default file means built-in
// defaults; an explicitly named file must exist.
//
// Returns the path actually read, or "" when defaults were used.
func loadConfig(flagPath string) (*config.Config, string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			cfg, err := config.Default()
			return cfg, "", err
		}
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
