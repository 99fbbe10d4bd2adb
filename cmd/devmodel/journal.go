package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/devmodel/internal/infrastructure/database"
	"github.com/nerrad567/devmodel/internal/journal"
	"github.com/nerrad567/devmodel/migrations"
)

// openJournal opens and migrates the configured database.
func openJournal(ctx context.Context, configPath string) (*database.DB, *journal.SQLiteRepository, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, journal.NewSQLiteRepository(db.DB), nil
}

func journalCmd(configPath *string) *cobra.Command {
	var filter journal.Filter
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recorded device lifecycle events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, repo, err := openJournal(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := repo.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, heading("Journal"))
			if len(res.Entries) == 0 {
				fmt.Fprintln(out, muted("no events"))
				return nil
			}
			rows := make([][]string, 0, len(res.Entries))
			for _, e := range res.Entries {
				rows = append(rows, []string{
					e.OccurredAt.Local().Format(time.DateTime),
					e.Type,
					e.Driver,
					e.DeviceID,
					e.Path,
					strconv.FormatBool(e.Hotplugged),
					e.Error,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"TIME", "EVENT", "DRIVER", "ID", "PATH", "HOTPLUG", "ERROR"}, rows))
			fmt.Fprintln(out, muted(fmt.Sprintf("showing %d of %d", len(res.Entries), res.Total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Type, "type", "", "Only events of this type (created, initialized, unplugged, ...)")
	cmd.Flags().StringVar(&filter.DeviceID, "device", "", "Only events of this device id")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum number of events")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Number of events to skip")

	cmd.AddCommand(journalPruneCmd(configPath))
	return cmd
}

func journalPruneCmd(configPath *string) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal events older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive, got %s", olderThan)
			}
			db, repo, err := openJournal(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := repo.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successMsg("pruned %d events", n))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age of the oldest event to keep")
	return cmd
}
