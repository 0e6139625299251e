package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zenithflow/zenithflow/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "zenithflow-configure",
		Short: "Configuration tool for the ZenithFlow API",
		Long:  "CLI tool for managing the database-backed runtime settings (CORS, rate limits) and checking service connectivity",
	}

	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
