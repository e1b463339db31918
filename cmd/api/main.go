package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/tracker/cmd/api/commands"
)

func main() {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:          "tracker",
		Short:        "Event and task tracker",
		Long:         `Tracker keeps a list of scheduled events with a simple lifecycle and a list of to-do tasks, served over a JSON API.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "http://localhost:3001", "base URL of a running tracker server")

	rootCmd.AddCommand(commands.NewServeCommand(opts))
	rootCmd.AddCommand(commands.NewMigrateCommand(opts))
	rootCmd.AddCommand(commands.NewVersionCommand())
	rootCmd.AddCommand(commands.NewEventsCommand(opts))
	rootCmd.AddCommand(commands.NewTasksCommand(opts))

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
