// ABOUTME: Aggregate statistics over a sequence of records.
// ABOUTME: Powers the summary panel in the dashboard, CLI, and MCP server.
package models

// Summary holds the dashboard's headline metrics.
type Summary struct {
	Count                int     `json:"count"`
	AverageSleepHours    float64 `json:"average_sleep_hours"`
	TotalExerciseMinutes int     `json:"total_exercise_minutes"`
	MostRecentMood       Mood    `json:"most_recent_mood"`
}

// Summarize computes mean sleep, total exercise, and the mood of the
// chronologically last record. Records need not be sorted.
// An empty input yields the zero Summary.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	var s Summary
	var sleep float64
	latest := records[0]
	for _, r := range records {
		sleep += r.SleepHours
		s.TotalExerciseMinutes += r.ExerciseMinutes
		if !r.Date.Before(latest.Date) {
			latest = r
		}
	}

	s.Count = len(records)
	s.AverageSleepHours = sleep / float64(len(records))
	s.MostRecentMood = latest.Mood
	return s
}
