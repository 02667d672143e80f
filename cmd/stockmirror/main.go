// Command stockmirror serves the inventory mirror API and manages the
// remote row-store it mirrors.
//
//	stockmirror serve             # HTTP API + scheduled jobs
//	stockmirror migrate           # create the remote tables
//	stockmirror migrate:rollback
//	stockmirror migrate:status
//	stockmirror seed              # fill the remote with the demo data
//	stockmirror dashboard         # print the dashboard counters
//	stockmirror report revenue    # revenue | top | performance | stock
//	stockmirror export sales.xlsx # .csv or .xlsx
//	stockmirror backup            # write a snapshot to BACKUP_DISK
//	stockmirror routes            # list API routes
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/stockmirror/database/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stockmirror",
	Short:         "Inventory and sales mirror",
	Long:          "stockmirror mirrors a remote inventory database into a local store and serves it over a JSON API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routesCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Mirror
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
}
