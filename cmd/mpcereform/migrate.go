package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mpcereform/internal/migrate"
	"mpcereform/internal/report"
)

var migrateForce bool

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Resolve agents and rebuild the mpce schema from the legacy data",
		RunE:  runMigrate,
	}
	cmd.Flags().BoolVar(&migrateForce, "force", false, "Drop an existing mpce schema before migrating")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := migrate.Run(ctx, cfg, db, cfg.Workbooks(), log, migrate.Options{Force: migrateForce})
	if err != nil {
		return err
	}

	summary, err := report.Collect(ctx, db)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Migration complete.")
	fmt.Fprintf(os.Stdout, "  Authors linked/created:  %d/%d\n", result.AuthorsLinked, result.AuthorsCreated)
	fmt.Fprintf(os.Stdout, "  Clients linked/created:  %d/%d (%d reviewed)\n", result.ClientsLinked, result.ClientsCreated, result.ReviewedCreated)
	fmt.Fprintf(os.Stdout, "  New professions:         %d\n", result.ProfessionsAdded)
	fmt.Fprintln(os.Stdout)
	if err := summary.Write(os.Stdout); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nUnresolved references: %d\n", len(result.Unresolved))
	if verbose {
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
	}
	return nil
}
