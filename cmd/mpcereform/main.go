package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonLogs   bool
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:          "mpcereform",
		Short:        "Migrate the MPCE manuscripts database into the mpce schema",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "mpcereform.yaml", "Project config file")
	root.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")

	root.AddCommand(migrateCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(exportGraphCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
