// ABOUTME: CLI command for recording a day's health data.
// ABOUTME: Replaces any existing record for the same date.
package main

import (
	"fmt"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		exercise int
		sleep    float64
		mood     string
		memo     string
	)

	cmd := &cobra.Command{
		Use:     "add [date]",
		Aliases: []string{"a"},
		Short:   "Record exercise, sleep, mood, and memo for a day",
		Long: `Record a day's health data. The date defaults to today.

Exercise is clamped to 0-300 minutes and sleep to 0-24 hours.
Moods: great (😊 最高), okay (🙂 普通), tired (😫 疲れた).

Adding a record for a date that already has one replaces it entirely,
including clearing the memo if --memo is not given.

Examples:
  healthlog add --exercise 45 --sleep 6.5 --mood great --memo "ran"
  healthlog add 2024-01-01 -e 30 -s 7 -m okay`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := models.Today()
			if len(args) == 1 {
				d, err := models.ParseDate(args[0])
				if err != nil {
					return err
				}
				date = d
			}

			m, err := models.ParseMood(mood)
			if err != nil {
				return err
			}

			r := models.NewRecord(date, exercise, sleep, m, memo)
			if err := a.repo.Upsert(cmd.Context(), r); err != nil {
				return fmt.Errorf("failed to save record: %w", err)
			}

			out := cmd.OutOrStdout()
			success(out, "Recorded %s", r.DateKey())
			fmt.Fprintf(out, "  %d min exercise  %s h sleep  %s\n",
				r.ExerciseMinutes, storage.FormatSleep(r.SleepHours), r.Mood)
			if r.Memo != "" {
				faint.Fprintf(out, "  %s\n", r.Memo)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&exercise, "exercise", "e", models.DefaultExerciseMinutes, "exercise minutes (0-300)")
	cmd.Flags().Float64VarP(&sleep, "sleep", "s", models.DefaultSleepHours, "sleep hours (0-24)")
	cmd.Flags().StringVarP(&mood, "mood", "m", "great", "mood: great, okay, or tired")
	cmd.Flags().StringVar(&memo, "memo", "", "short memo")
	return cmd
}
