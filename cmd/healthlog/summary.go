// ABOUTME: CLI command showing headline metrics and trend charts.
// ABOUTME: Renders a lipgloss panel with average sleep, total exercise, and latest mood.
package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/spf13/cobra"
)

const chartBarWidth = 30

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

func newSummaryCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:     "summary",
		Aliases: []string{"sum", "s"},
		Short:   "Show average sleep, total exercise, latest mood, and trends",
		Long: `Show the summary of every record: average sleep hours, total
exercise minutes, and the mood of the most recent day, followed by text charts
of sleep and exercise for the most recent days.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.repo.LoadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load records: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No records yet. Add today's with 'healthlog add'.")
				return nil
			}

			fmt.Fprintln(out, renderSummary(models.Summarize(records)))

			recent := records
			if days > 0 && len(recent) > days {
				recent = recent[len(recent)-days:]
			}
			fmt.Fprintln(out, headingStyle.Render("Sleep"))
			fmt.Fprint(out, textChart(recent, func(r models.Record) float64 { return r.SleepHours },
				func(r models.Record) string { return storage.FormatSleep(r.SleepHours) + " h" }))
			fmt.Fprintln(out, headingStyle.Render("Exercise"))
			fmt.Fprint(out, textChart(recent, func(r models.Record) float64 { return float64(r.ExerciseMinutes) },
				func(r models.Record) string { return fmt.Sprintf("%d min", r.ExerciseMinutes) }))
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 14, "days shown in the charts (0 for all)")
	return cmd
}

func renderSummary(s models.Summary) string {
	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left, labelStyle.Render(label), valueStyle.Render(value))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Average sleep", fmt.Sprintf("%.1f h", s.AverageSleepHours)),
		"    ",
		cell("Total exercise", fmt.Sprintf("%d min", s.TotalExerciseMinutes)),
		"    ",
		cell("Latest mood", string(s.MostRecentMood)),
	)
	return panelStyle.Render(row)
}

// textChart draws one horizontal bar per record, scaled to the series maximum.
func textChart(records []models.Record, value func(models.Record) float64, label func(models.Record) string) string {
	peak := 0.0
	for _, r := range records {
		peak = math.Max(peak, value(r))
	}

	var sb strings.Builder
	for _, r := range records {
		n := 0
		if peak > 0 {
			n = int(math.Round(value(r) / peak * chartBarWidth))
		}
		fmt.Fprintf(&sb, "%s %s%s %s\n",
			r.DateKey(),
			strings.Repeat("█", n),
			strings.Repeat(" ", chartBarWidth-n),
			label(r))
	}
	return sb.String()
}
