// ABOUTME: CLI command for deleting the record for a date.
// ABOUTME: Deleting a date with no record succeeds without changes.
package main

import (
	"fmt"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <date>",
		Aliases: []string{"del", "rm"},
		Short:   "Delete the record for a date",
		Long: `Delete the record for a date (YYYY-MM-DD).

Deleting a date that has no record is not an error.

EXAMPLES:

  healthlog delete 2024-01-01
  healthlog rm 2024-01-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := models.ParseDate(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			records, err := a.repo.LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load records: %w", err)
			}
			found := false
			for _, r := range records {
				if r.Date.Equal(date) {
					found = true
					break
				}
			}

			if err := a.repo.DeleteByDate(ctx, date); err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			out := cmd.OutOrStdout()
			if !found {
				faint.Fprintf(out, "No record for %s; nothing to delete.\n", models.FormatDate(date))
				return nil
			}
			warnColor.Fprintf(out, "✗ Deleted %s\n", models.FormatDate(date))
			return nil
		},
	}
}
