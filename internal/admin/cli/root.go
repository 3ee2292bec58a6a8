// Package cli is the operator command line of the server: schema
// migrations and inspection or repair of stored identities.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/dbx"
	"github.com/dmitrijs2005/secondmind/internal/server/config"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN    string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Deps are the collaborators the commands open on demand.
type Deps struct {
	Open       func(ctx context.Context, dsn string) (*sql.DB, error)
	NewManager func(db *sql.DB) (repomanager.RepositoryManager, error)
	Now        func() time.Time
}

// DefaultDeps connects to PostgreSQL.
func DefaultDeps() Deps {
	return Deps{
		Open: dbx.OpenPostgres,
		NewManager: func(db *sql.DB) (repomanager.RepositoryManager, error) {
			return repomanager.NewPostgresRepositoryManager(db, false)
		},
		Now: time.Now,
	}
}

// NewRootCommand creates the root command of the admin CLI.
func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "secondmind-admin",
		Short: "SecondMind server administration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.DSN == "" {
				cfg, err := config.FromEnv()
				if err != nil {
					return err
				}
				opts.DSN = cfg.DatabaseDSN
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "PostgreSQL DSN (default: $DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts, deps))
	cmd.AddCommand(NewUsersCommand(opts, deps))

	return cmd
}

// session is an open database with its repository manager.
type session struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func (s *session) Close() error { return s.db.Close() }

func openSession(ctx context.Context, opts *RootOptions, deps Deps) (*session, error) {
	db, err := deps.Open(ctx, opts.DSN)
	if err != nil {
		return nil, err
	}
	rm, err := deps.NewManager(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &session{db: db, rm: rm}, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
