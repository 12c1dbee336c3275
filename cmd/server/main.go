package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fer-api",
		Short:         "Facial emotion recognition API",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		// running the binary without a subcommand starts the server
		RunE: RunServer,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the API server",
			Args:  cobra.ExactArgs(0),
			RunE:  RunServer,
		},
		&cobra.Command{
			Use:   "models",
			Short: "List the registered models",
			Args:  cobra.ExactArgs(0),
			RunE:  ListModels,
		},
	)

	return rootCmd
}

func main() {
	if err := NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
