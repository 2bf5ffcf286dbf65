// Package main is the entry point for the hrbot interview-preparation bot.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hrbot",
		Short: "Interview preparation chat bot",
		Long: `hrbot walks users through a short interview quiz, asks a text
generation service for feedback, and offers topic tests and free questions
in Kyrgyz, Russian and English.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newConsoleCmd())

	return root
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
