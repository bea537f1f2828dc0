// ABOUTME: Record model and Mood enum for the daily health log.
// ABOUTME: One record per calendar date with clamped exercise and sleep values.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for keys and exports.
const DateLayout = "2006-01-02"

// Input ranges enforced by every form surface.
const (
	MinExerciseMinutes = 0
	MaxExerciseMinutes = 300
	MinSleepHours      = 0.0
	MaxSleepHours      = 24.0
)

// Form defaults.
const (
	DefaultExerciseMinutes = 30
	DefaultSleepHours      = 7.0
	ExerciseStep           = 10
	SleepStep              = 0.5
)

// Mood is one of a fixed set of mood labels.
type Mood string

const (
	MoodGreat Mood = "😊 最高"
	MoodOkay  Mood = "🙂 普通"
	MoodTired Mood = "😫 疲れた"
)

// AllMoods lists the moods in form order.
var AllMoods = []Mood{MoodGreat, MoodOkay, MoodTired}

// moodAliases maps plain-text names to mood labels for CLI and MCP input.
var moodAliases = map[string]Mood{
	"great": MoodGreat,
	"best":  MoodGreat,
	"okay":  MoodOkay,
	"ok":    MoodOkay,
	"fine":  MoodOkay,
	"tired": MoodTired,
}

// IsValidMood checks if a string is one of the mood labels.
func IsValidMood(s string) bool {
	for _, m := range AllMoods {
		if string(m) == s {
			return true
		}
	}
	return false
}

// ParseMood resolves a mood label or alias.
func ParseMood(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	if IsValidMood(s) {
		return Mood(s), nil
	}
	if m, ok := moodAliases[strings.ToLower(s)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown mood: %q (use great, okay, or tired)", s)
}

// Record is a single daily health log entry.
type Record struct {
	Date            time.Time
	ExerciseMinutes int
	SleepHours      float64
	Mood            Mood
	Memo            string
}

// NewRecord builds a record for the calendar day of date, clamping exercise
// and sleep into their input ranges and normalizing memo line endings.
func NewRecord(date time.Time, exerciseMinutes int, sleepHours float64, mood Mood, memo string) Record {
	return Record{
		Date:            NormalizeDate(date),
		ExerciseMinutes: ClampExercise(exerciseMinutes),
		SleepHours:      ClampSleep(sleepHours),
		Mood:            mood,
		Memo:            NormalizeMemo(memo),
	}
}

// NormalizeMemo converts CRLF and lone CR line endings to LF. Browsers post
// textareas with CRLF, and a CSV round trip returns LF.
func NormalizeMemo(memo string) string {
	memo = strings.ReplaceAll(memo, "\r\n", "\n")
	return strings.ReplaceAll(memo, "\r", "\n")
}

// DateKey returns the record's ISO date.
func (r Record) DateKey() string {
	return FormatDate(r.Date)
}

// ClampExercise limits minutes to [MinExerciseMinutes, MaxExerciseMinutes].
func ClampExercise(minutes int) int {
	if minutes < MinExerciseMinutes {
		return MinExerciseMinutes
	}
	if minutes > MaxExerciseMinutes {
		return MaxExerciseMinutes
	}
	return minutes
}

// ClampSleep limits hours to [MinSleepHours, MaxSleepHours].
func ClampSleep(hours float64) float64 {
	if hours != hours || hours < MinSleepHours {
		return MinSleepHours
	}
	if hours > MaxSleepHours {
		return MaxSleepHours
	}
	return hours
}

// NormalizeDate returns UTC midnight of t's calendar day in t's own location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current local calendar day.
func Today() time.Time {
	return NormalizeDate(time.Now())
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
