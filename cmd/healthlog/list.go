// ABOUTME: CLI command for listing daily records.
// ABOUTME: Prints records oldest first, optionally since a date or the last N.
package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		since string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List daily records",
		Long: `List records in date order, oldest first.

OUTPUT FORMAT:

  Each line shows: DATE  EXERCISE  SLEEP  MOOD  MEMO

EXAMPLES:

  healthlog list                      # Every record
  healthlog list -n 7                 # The most recent 7 days
  healthlog list --since 2024-01-01   # Records from 2024 onward`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.repo.LoadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}

			if since != "" {
				d, err := models.ParseDate(since)
				if err != nil {
					return err
				}
				records = storage.FilterSince(records, d)
			}
			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No records found.")
				return nil
			}

			for _, r := range records {
				memo := ""
				if r.Memo != "" {
					memo = faint.Sprint(truncate(strings.ReplaceAll(r.Memo, "\n", " "), 40))
				}
				fmt.Fprintf(out, "%s  %s  %s  %s  %s\n",
					bold.Sprint(r.DateKey()),
					padLeft(fmt.Sprintf("%d min", r.ExerciseMinutes), 7),
					padLeft(storage.FormatSleep(r.SleepHours)+" h", 6),
					r.Mood,
					memo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only records on or after date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the most recent N records")
	return cmd
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func padLeft(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(" ", length-n) + s
}
