// ABOUTME: MCP tool implementations for daily health records.
// ABOUTME: Provides upsert, list, delete, and summary operations over the store.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func (s *Server) registerTools() {
	// upsert_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "upsert_record",
		Description: "Record a day's exercise, sleep, mood and memo. Replaces any existing record for that date.",
	}, s.handleUpsertRecord)

	// list_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_records",
		Description: "List daily records in date order, optionally since a date or limited to the most recent N",
	}, s.handleListRecords)

	// delete_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete the record for a date. Deleting a date with no record succeeds.",
	}, s.handleDeleteRecord)

	// get_summary
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_summary",
		Description: "Average sleep, total exercise and the latest mood across all records",
	}, s.handleGetSummary)
}

// Tool input/output types

type upsertRecordInput struct {
	Date            string   `json:"date,omitempty" jsonschema:"Calendar date YYYY-MM-DD, defaults to today"`
	ExerciseMinutes *int     `json:"exercise_minutes,omitempty" jsonschema:"Exercise minutes 0-300 (default 30)"`
	SleepHours      *float64 `json:"sleep_hours,omitempty" jsonschema:"Sleep hours 0-24 (default 7.0)"`
	Mood            string   `json:"mood,omitempty" jsonschema:"Mood: great, okay or tired (or the label itself); defaults to great"`
	Memo            string   `json:"memo,omitempty" jsonschema:"Free-text memo"`
}

type recordOutput struct {
	Date     string  `json:"date"`
	Exercise int     `json:"exercise"`
	Sleep    float64 `json:"sleep"`
	Mood     string  `json:"mood"`
	Memo     string  `json:"memo"`
	Message  string  `json:"message"`
}

type listRecordsInput struct {
	Since string `json:"since,omitempty" jsonschema:"Only records on or after this date (YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Keep only the most recent N records"`
}

type listRecordsOutput struct {
	Records []storage.RecordPayload `json:"records"`
	Count   int                     `json:"count"`
	Message string                  `json:"message,omitempty"`
}

type deleteRecordInput struct {
	Date string `json:"date" jsonschema:"Calendar date YYYY-MM-DD"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type getSummaryInput struct{}

type summaryOutput struct {
	Count                int     `json:"count"`
	AverageSleepHours    float64 `json:"average_sleep_hours"`
	TotalExerciseMinutes int     `json:"total_exercise_minutes"`
	MostRecentMood       string  `json:"most_recent_mood,omitempty"`
	Message              string  `json:"message"`
}

// Tool handlers

func (s *Server) handleUpsertRecord(ctx context.Context, req *mcp.CallToolRequest, input upsertRecordInput) (*mcp.CallToolResult, recordOutput, error) {
	date := models.Today()
	if input.Date != "" {
		d, err := models.ParseDate(input.Date)
		if err != nil {
			return nil, recordOutput{}, err
		}
		date = d
	}

	exercise := models.DefaultExerciseMinutes
	if input.ExerciseMinutes != nil {
		exercise = *input.ExerciseMinutes
	}
	sleep := models.DefaultSleepHours
	if input.SleepHours != nil {
		sleep = *input.SleepHours
	}
	mood := models.AllMoods[0]
	if input.Mood != "" {
		m, err := models.ParseMood(input.Mood)
		if err != nil {
			return nil, recordOutput{}, err
		}
		mood = m
	}

	r := models.NewRecord(date, exercise, sleep, mood, input.Memo)
	if err := s.repo.Upsert(ctx, r); err != nil {
		s.logger.Error("upsert failed", zap.String("date", r.DateKey()), zap.Error(err))
		return nil, recordOutput{}, fmt.Errorf("failed to save record: %w", err)
	}

	return nil, recordOutput{
		Date:     r.DateKey(),
		Exercise: r.ExerciseMinutes,
		Sleep:    r.SleepHours,
		Mood:     string(r.Mood),
		Memo:     r.Memo,
		Message:  fmt.Sprintf("Saved %s: %d min exercise, %s h sleep, %s",
			r.DateKey(), r.ExerciseMinutes, storage.FormatSleep(r.SleepHours), r.Mood),
	}, nil
}

func (s *Server) handleListRecords(ctx context.Context, req *mcp.CallToolRequest, input listRecordsInput) (*mcp.CallToolResult, listRecordsOutput, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, listRecordsOutput{}, fmt.Errorf("failed to list records: %w", err)
	}

	if input.Since != "" {
		since, err := models.ParseDate(input.Since)
		if err != nil {
			return nil, listRecordsOutput{}, err
		}
		records = storage.FilterSince(records, since)
	}
	if input.Limit > 0 && len(records) > input.Limit {
		records = records[len(records)-input.Limit:]
	}

	out := listRecordsOutput{Records: make([]storage.RecordPayload, 0, len(records)), Count: len(records)}
	for _, r := range records {
		out.Records = append(out.Records, storage.NewRecordPayload(r))
	}
	if len(records) == 0 {
		out.Message = "No records found."
	}
	return nil, out, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *mcp.CallToolRequest, input deleteRecordInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	if err := s.repo.DeleteByDate(ctx, date); err != nil {
		s.logger.Error("delete failed", zap.String("date", input.Date), zap.Error(err))
		return nil, simpleOutput{}, fmt.Errorf("failed to delete record: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted record for %s", models.FormatDate(date)),
	}, nil
}

func (s *Server) handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input getSummaryInput) (*mcp.CallToolResult, summaryOutput, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, summaryOutput{}, fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		return nil, summaryOutput{Message: "No records yet."}, nil
	}

	sum := models.Summarize(records)
	return nil, summaryOutput{
		Count:                sum.Count,
		AverageSleepHours:    sum.AverageSleepHours,
		TotalExerciseMinutes: sum.TotalExerciseMinutes,
		MostRecentMood:       string(sum.MostRecentMood),
		Message:              fmt.Sprintf("%d records: average sleep %.1f h, total exercise %d min, latest mood %s",
			sum.Count, sum.AverageSleepHours, sum.TotalExerciseMinutes, sum.MostRecentMood),
	}, nil
}
