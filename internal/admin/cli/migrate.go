package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand groups the schema migration commands.
func NewMigrateCommand(opts *RootOptions, deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, deps)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.rm.RunMigrations(cmd.Context(), s.db); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			return printResult(cmd, opts, map[string]string{"status": "ok"}, "migrations applied")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, deps)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.rm.MigrationStatus(cmd.Context(), s.db); err != nil {
				return fmt.Errorf("migrate status: %w", err)
			}
			return nil
		},
	})

	return cmd
}
