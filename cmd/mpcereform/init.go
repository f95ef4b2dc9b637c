package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	var driver string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter mpcereform.yaml and .env",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(configPath, projectName, driver)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&driver, "driver", "postgres", "Database driver: postgres or sqlite")
	return cmd
}

func runInit(path, projectName, driver string) error {
	envPath := ".env"
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf("%s already exists", envPath)
	}

	var database string
	switch driver {
	case "postgres":
		database = "database:\n  driver: postgres\n  dsn: postgres://mpce@localhost:5432/mpce?sslmode=disable\n"
	case "sqlite":
		database = "database:\n  driver: sqlite\n  dsn: sqlite://mpce.db\n  source_path: manuscripts.db\n  target_path: mpce_new.db\n"
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\n%s\nspreadsheets:\n  dir: ./spreadsheets\n\nneo4j:\n  uri: bolt://localhost:7687\n  username: neo4j\n  database: neo4j\n", projectName, database)
	if err := os.WriteFile(path, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	envContents := "MPCE_DATABASE_PASSWORD=\nMPCE_NEO4J_PASSWORD=changeme\n"
	if err := os.WriteFile(envPath, []byte(envContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", envPath, err)
	}
	return nil
}
