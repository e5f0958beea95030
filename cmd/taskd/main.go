// Command taskd runs the task service: it connects PostgreSQL and
// Redis, builds a taskcore engine, and serves the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskd",
	Short: "Multi-tenant task service with session-backed auth and a Redis read cache",
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
