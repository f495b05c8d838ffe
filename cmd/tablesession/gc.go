package main

import (
	"fmt"
	"time"

	"github.com/aretw0/tablesession/internal/cli"
	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete rows older than the maximum session lifetime",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			maxAge := b.Config().MaxLifetime
			if cmd.Flags().Changed("max-age") {
				maxAge, _ = cmd.Flags().GetDuration("max-age")
			}
			if maxAge < 0 {
				return fmt.Errorf("max-age must not be negative")
			}

			store, err := b.NewStore()
			if err != nil {
				return err
			}
			n, err := store.GC(cmd.Context(), maxAge)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d rows older than %s\n", n, maxAge)
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the session table and its indexes",
	Long:  `Create the session table and its indexes. Only the sqlite driver has a schema; other drivers need no migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Opening the sqlite backend applies pending migrations
		return withBackend(cmd, func(b *cli.Backend) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Table '%s' is ready (%s)\n", b.Config().Table, b.Config().Driver)
			return nil
		})
	},
}

func init() {
	gcCmd.Flags().Duration("max-age", time.Duration(0), "Retention window (defaults to the configured max_lifetime)")
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(migrateCmd)
}
