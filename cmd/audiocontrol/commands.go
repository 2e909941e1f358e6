package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-audio/internal/persistence"
)

// rootOptions holds flags shared by all commands.
type rootOptions struct {
	ConfigPath string
}

// newRootCommand creates the audiocontrol command tree. Without a
// subcommand it runs the controller.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "audiocontrol",
		Short:         "Audio routing decision core",
		Long:          "Audio Control decides which audio connections exist, at which volume, and in which order routing operations run.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts.ConfigPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", getConfigPath(),
		"configuration file (env "+configEnv+")")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newPersistenceCommand(opts))

	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the controller until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts.ConfigPath)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "audiocontrol %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// newPersistenceCommand groups commands that inspect the stored class data.
func newPersistenceCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persistence",
		Short: "Inspect persisted class data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored persistence keys and check they decode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			db, err := database.Open(database.Config{
				Path:        cfg.Database.Path,
				WALMode:     cfg.Database.WALMode,
				BusyTimeout: cfg.Database.BusyTimeout,
			})
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			store := persistence.NewSQLiteStore(db)
			defer store.Close()

			values, err := store.Values(cmd.Context())
			if err != nil {
				return err
			}
			return showPersistence(cmd.OutOrStdout(), values)
		},
	})
	return cmd
}

// showPersistence writes one "key = value" line per stored key, sorted by
// key, and reports whether the values decode.
func showPersistence(w io.Writer, values map[string]string) error {
	if len(values) == 0 {
		fmt.Fprintln(w, "no persisted data")
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s = %s\n", k, values[k])
	}

	if _, err := persistence.Decode(values); err != nil {
		return fmt.Errorf("stored data does not decode: %w", err)
	}
	return nil
}
