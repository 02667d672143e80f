package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockmirror/config"
	"github.com/shashiranjanraj/stockmirror/internal/kernel"
	"github.com/shashiranjanraj/stockmirror/internal/server"
)

var portFlag string

// stockmirror serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Shutdown()

		if err := k.StartJobs(ctx); err != nil {
			return err
		}

		port := portFlag
		if port == "" {
			port = config.AppPort()
		}
		return server.Start(ctx, ":"+port, k.Handler())
	},
}

// stockmirror routes
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List every API route",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range kernel.Router(nil, nil).Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&portFlag, "port", "p", "", "Listen port (default APP_PORT)")
}
