package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"mpcereform/internal/validate"
)

var validateStrict bool

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the migrated schema for unresolved references and suspect agents",
		RunE:  runValidate,
	}
	cmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail on warnings as well as errors")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	result, err := validate.Run(ctx, db)
	if err != nil {
		return err
	}
	if len(result.Issues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	bySeverity := make(map[validate.Severity][]validate.Issue)
	for _, issue := range result.Issues {
		bySeverity[issue.Severity] = append(bySeverity[issue.Severity], issue)
	}
	printSection(os.Stdout, "Errors", bySeverity[validate.SeverityError])
	printSection(os.Stdout, "Warnings", bySeverity[validate.SeverityWarn])

	if n := result.Errors(); n > 0 {
		return errors.Newf("validation found %d errors", n)
	}
	if validateStrict {
		return errors.Newf("validation found %d warnings", len(bySeverity[validate.SeverityWarn]))
	}
	return nil
}

func printSection(out io.Writer, title string, issues []validate.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(out, "%s (%d):\n", title, len(issues))
	for _, issue := range issues {
		subject := issue.Agent
		if issue.Column != "" {
			subject = issue.Column
		}
		fmt.Fprintf(out, "  [%s] %s: %s\n", issue.Code, subject, issue.Message)
	}
}
