package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/yourusername/quizbank-api/pkg/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(func(m *migrateV4.Migrate) error {
					err := m.Up()
					if errors.Is(err, migrateV4.ErrNoChange) {
						fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
						return nil
					}
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withMigrator(func(m *migrateV4.Migrate) error {
					v, dirty, err := m.Version()
					if errors.Is(err, migrateV4.ErrNilVersion) {
						fmt.Fprintln(cmd.OutOrStdout(), "no migration applied")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return a.withMigrator(func(m *migrateV4.Migrate) error {
					if err := m.Force(version); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "forced schema version to %d\n", version)
					return nil
				})
			},
		},
	)
	return cmd
}

// withMigrator runs fn against a migrator over a dedicated lib/pq connection.
func (a *app) withMigrator(fn func(m *migrateV4.Migrate) error) error {
	if a.cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations need the postgres driver, got %q", a.cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", a.cfg.Database.PostgresConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := database.NewMigrator(db, a.cfg.Database.MigrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
