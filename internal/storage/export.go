// ABOUTME: Export and import functionality for daily health records.
// ABOUTME: Supports CSV, JSON, YAML, and Markdown formats over a record sequence.
package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/healthlog/internal/models"
	"gopkg.in/yaml.v3"
)

// CSVHeader is the header row of every CSV export and of the CSV backend.
var CSVHeader = []string{"date", "exercise", "sleep", "mood", "memo"}

// headerAliases maps column titles from older dashboard downloads to fields.
var headerAliases = map[string]string{
	"日付":       "date",
	"運動時間(分)":  "exercise",
	"睡眠時間(時間)": "sleep",
	"気分":       "mood",
	"メモ":       "memo",
}

// RecordPayload is the serialized form of a record.
type RecordPayload struct {
	Date     string  `json:"date" yaml:"date"`
	Exercise int     `json:"exercise" yaml:"exercise"`
	Sleep    float64 `json:"sleep" yaml:"sleep"`
	Mood     string  `json:"mood" yaml:"mood"`
	Memo     string  `json:"memo" yaml:"memo"`
}

// NewRecordPayload converts a record to its serialized form.
func NewRecordPayload(r models.Record) RecordPayload {
	return RecordPayload{
		Date:     r.DateKey(),
		Exercise: r.ExerciseMinutes,
		Sleep:    r.SleepHours,
		Mood:     string(r.Mood),
		Memo:     r.Memo,
	}
}

// Record converts a payload back to a record.
func (p RecordPayload) Record() (models.Record, error) {
	date, err := models.ParseDate(p.Date)
	if err != nil {
		return models.Record{}, err
	}
	return models.NewRecord(date, p.Exercise, p.Sleep, models.Mood(p.Mood), p.Memo), nil
}

// ExportData represents the full JSON/YAML export envelope.
type ExportData struct {
	Version    string          `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Tool       string          `json:"tool" yaml:"tool"`
	Records    []RecordPayload `json:"records" yaml:"records"`
}

func newExportData(records []models.Record) *ExportData {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "healthlog",
		Records:    make([]RecordPayload, 0, len(records)),
	}
	for _, r := range records {
		data.Records = append(data.Records, NewRecordPayload(r))
	}
	return data
}

// FilterSince returns records dated on or after since.
func FilterSince(records []models.Record, since time.Time) []models.Record {
	since = models.NormalizeDate(since)
	var filtered []models.Record
	for _, r := range records {
		if !r.Date.Before(since) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// FormatSleep renders hours with at least one decimal place (7 -> "7.0").
func FormatSleep(hours float64) string {
	if hours == math.Trunc(hours) {
		return strconv.FormatFloat(hours, 'f', 1, 64)
	}
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

// EncodeCSV writes records as CSV with CSVHeader in the given order.
func EncodeCSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.DateKey(),
			strconv.Itoa(r.ExerciseMinutes),
			FormatSleep(r.SleepHours),
			string(r.Mood),
			r.Memo,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.DateKey(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV returns the CSV encoding of records.
func ExportCSV(records []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses CSV with a header row. Columns are matched by name, so
// column order and the older Japanese titles are both accepted.
func DecodeCSV(r io.Reader) ([]models.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return []models.Record{}, nil
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		cols[strings.ToLower(name)] = i
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("read csv: missing date column")
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		date, err := models.ParseDate(field(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		exercise := 0
		if s := field(row, "exercise"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: invalid exercise %q", line, s)
			}
			exercise = int(math.Round(v))
		}

		sleep := 0.0
		if s := field(row, "sleep"); s != "" {
			sleep, err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: invalid sleep %q", line, s)
			}
		}

		memo := ""
		if i, ok := cols["memo"]; ok && i < len(row) {
			memo = row[i]
		}

		records = append(records, models.NewRecord(date, exercise, sleep, models.Mood(field(row, "mood")), memo))
	}
	return records, nil
}

// ExportJSON exports records as an indented JSON envelope.
func ExportJSON(records []models.Record) ([]byte, error) {
	return json.MarshalIndent(newExportData(records), "", "  ")
}

// ExportYAML exports records as a YAML envelope.
func ExportYAML(records []models.Record) ([]byte, error) {
	data := newExportData(records)

	yamlData := struct {
		Version    string          `yaml:"version"`
		ExportedAt string          `yaml:"exported_at"`
		Tool       string          `yaml:"tool"`
		Records    []RecordPayload `yaml:"records"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Records:    data.Records,
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown exports records as a Markdown table with a summary line.
func ExportMarkdown(records []models.Record) string {
	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Health Log Export - %s\n\n", now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(records) == 0 {
		sb.WriteString("No records.\n")
		return sb.String()
	}

	s := models.Summarize(records)
	sb.WriteString(fmt.Sprintf("Average sleep: %.1f h · Total exercise: %d min · Latest mood: %s\n\n",
		s.AverageSleepHours, s.TotalExerciseMinutes, s.MostRecentMood))

	sb.WriteString("| Date | Exercise | Sleep | Mood | Memo |\n")
	sb.WriteString("|------|----------|-------|------|------|\n")
	for _, r := range records {
		memo := strings.ReplaceAll(r.Memo, "\n", " ")
		memo = strings.ReplaceAll(memo, "|", "\\|")
		sb.WriteString(fmt.Sprintf("| %s | %d min | %s h | %s | %s |\n",
			r.DateKey(), r.ExerciseMinutes, FormatSleep(r.SleepHours), r.Mood, memo))
	}

	return sb.String()
}

// ImportJSON parses a JSON export envelope.
func ImportJSON(data []byte) ([]models.Record, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	records := make([]models.Record, 0, len(exportData.Records))
	for i, p := range exportData.Records {
		r, err := p.Record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ImportCSV parses CSV bytes.
func ImportCSV(data []byte) ([]models.Record, error) {
	return DecodeCSV(bytes.NewReader(data))
}

// ImportRecords upserts each record into repo in order, so a later record
// for the same date wins. It returns the number of upserts applied.
func ImportRecords(ctx context.Context, repo Repository, records []models.Record) (int, error) {
	n := 0
	for _, r := range records {
		if err := repo.Upsert(ctx, r); err != nil {
			return n, fmt.Errorf("import %s: %w", r.DateKey(), err)
		}
		n++
	}
	return n, nil
}
