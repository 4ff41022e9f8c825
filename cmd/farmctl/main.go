package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "farmctl",
		Short:         "Operator tooling for the farm service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSweepCommand())
	cmd.AddCommand(newKeygenCommand())
	cmd.AddCommand(newTokenCommand())
	cmd.AddCommand(newBillingCommand())
	return cmd
}

func defaultDatabaseFile() string {
	if v := os.Getenv("FARM_DATABASE_FILE"); v != "" {
		return v
	}
	return "farm.db"
}
