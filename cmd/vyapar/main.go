package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Blank imports run the init() registrations for migrations and seeders.
	_ "github.com/shashiranjanraj/vyapar/database/migrations"
	_ "github.com/shashiranjanraj/vyapar/database/seeders"
)

var rootCmd = &cobra.Command{
	Use:   "vyapar",
	Short: "Order and inventory backend",
}

func init() {
	rootCmd.AddCommand(
		serveCmd,
		routeListCmd,
		migrateCmd,
		migrateRollbackCmd,
		migrateStatusCmd,
		seedCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
