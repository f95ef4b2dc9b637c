package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"mpcereform/internal/report"
)

var summaryJSON bool

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print counts of the migrated agents, keys and events",
		RunE:  runSummary,
	}
	cmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	summary, err := report.Collect(ctx, db)
	if err != nil {
		return err
	}

	if summaryJSON {
		payload, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding summary")
		}
		fmt.Fprintln(os.Stdout, string(payload))
		return nil
	}
	return summary.Write(os.Stdout)
}
