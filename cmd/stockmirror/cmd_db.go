package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockmirror/config"
	"github.com/shashiranjanraj/stockmirror/database/seeders"
	"github.com/shashiranjanraj/stockmirror/pkg/database"
	"github.com/shashiranjanraj/stockmirror/pkg/migration"
)

// bootDB loads config and opens the remote database.
func bootDB(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect(ctx)
}

// stockmirror migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the remote tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		defer database.Close(database.DB)

		n, err := migration.New(database.DB, os.Stdout).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) ran\n", n)
		return nil
	},
}

// stockmirror migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		defer database.Close(database.DB)

		n, err := migration.New(database.DB, os.Stdout).Rollback(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) rolled back\n", n)
		return nil
	},
}

// stockmirror migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		defer database.Close(database.DB)

		statuses, err := migration.New(database.DB, os.Stdout).Status(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, s := range statuses {
			ran := "no"
			batch := "-"
			if s.Ran {
				ran = "yes"
				batch = fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, ran, batch)
		}
		return w.Flush()
	},
}

// stockmirror seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the remote tables with the demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(cmd.Context()); err != nil {
			return err
		}
		defer database.Close(database.DB)
		return seeders.RunAll(database.DB, os.Stdout)
	},
}
