// Copyright (c) 2021 Patrick Ascher <development@fullhouse-productions.com>. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/patrickascher/sqlkit/migration"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
)

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "sqlkit",
		Short: "Run database migrations",
		Long: `sqlkit runs the yaml migrations and seed files of a directory.

Examples:
  sqlkit migrate
  sqlkit rollback --connection replica
  sqlkit status --config config/sqlkit.yaml --dir db/migrations
  sqlkit seed 01_teams
  sqlkit make:migration create_users_table
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.config, "config", "c", "sqlkit.yaml", "configuration file")
	flags.StringVar(&opts.env, "env", ".env", "env file, ignored if it does not exist")
	flags.StringVar(&opts.connection, "connection", "", "connection name (default connection if empty)")
	flags.StringVarP(&opts.dir, "dir", "d", "", "directory of the yaml migrations")
	flags.StringVar(&opts.seeds, "seeds", "", "directory of the yaml seed files")
	flags.StringVar(&opts.table, "table", "", "name of the migration table")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log all statements")

	cmd.AddCommand(
		repoCmd(opts, "migrate", "Run all pending migrations", func(r *migration.Repository, out io.Writer) error {
			n, err := r.Migrate()
			if err != nil {
				return err
			}
			if n == 0 {
				yellow.Fprintln(out, "Nothing to migrate.")
				return nil
			}
			green.Fprintf(out, "Migrated %d migration(s).\n", n)
			return nil
		}),
		repoCmd(opts, "rollback", "Rollback the last batch", func(r *migration.Repository, out io.Writer) error {
			n, err := r.RollbackLastBatch()
			if err != nil {
				return err
			}
			green.Fprintf(out, "Rolled back %d migration(s).\n", n)
			return nil
		}),
		repoCmd(opts, "reset", "Rollback all migrations", func(r *migration.Repository, out io.Writer) error {
			n, err := r.RollbackAll()
			if err != nil {
				return err
			}
			green.Fprintf(out, "Rolled back %d migration(s).\n", n)
			return nil
		}),
		repoCmd(opts, "refresh", "Rollback all migrations and run them again", func(r *migration.Repository, out io.Writer) error {
			down, up, err := r.Refresh()
			if err != nil {
				return err
			}
			green.Fprintf(out, "Rolled back %d and migrated %d migration(s).\n", down, up)
			return nil
		}),
		repoCmd(opts, "status", "Show the status of all migrations", printStatus),
		seedCmd(opts),
		makeMigrationCmd(opts),
		makeSeederCmd(opts),
	)
	return cmd
}

// seedCmd runs all seeders or the given ones.
func seedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [name...]",
		Short: "Fill the database with the yaml seed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			n, err := s.seeder.Run(s.seeds, args...)
			if err != nil {
				return err
			}
			green.Fprintf(cmd.OutOrStdout(), "Seeded %d file(s).\n", n)
			return nil
		},
	}
}

// repoCmd creates a command which runs fn with an opened repository.
func repoCmd(opts *options, use string, short string, fn func(*migration.Repository, io.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()
			return fn(s.repo, cmd.OutOrStdout())
		},
	}
}

func printStatus(r *migration.Repository, out io.Writer) error {
	status, err := r.Status()
	if err != nil {
		return err
	}
	if len(status) == 0 {
		yellow.Fprintln(out, "No migrations found.")
		return nil
	}
	for _, s := range status {
		switch {
		case s.Missing:
			red.Fprintf(out, "%-8s", "Missing")
		case s.Ran:
			green.Fprintf(out, "%-8s", "Ran")
		default:
			yellow.Fprintf(out, "%-8s", "Pending")
		}
		fmt.Fprintf(out, " %s", s.Name)
		if s.Batch.Valid {
			fmt.Fprintf(out, " (batch %d, %s)", s.Batch.Int64, s.RanAt.String)
		}
		fmt.Fprintln(out)
	}
	return nil
}
