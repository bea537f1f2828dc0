// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, resource handlers, and a client session.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "healthlog.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func setupServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db := setupTestDB(t)
	server, err := NewServer(db, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, db
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func seed(t *testing.T, repo storage.Repository) {
	t.Helper()
	ctx := context.Background()
	for _, r := range []models.Record{
		models.NewRecord(mustDate(t, "2024-01-01"), 30, 7.0, models.MoodOkay, ""),
		models.NewRecord(mustDate(t, "2024-01-02"), 45, 6.5, models.MoodGreat, "ran"),
	} {
		if err := repo.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// brokenRepo fails every operation.
type brokenRepo struct{}

var errBroken = errors.New("store offline")

func (brokenRepo) LoadAll(context.Context) ([]models.Record, error) { return nil, errBroken }
func (brokenRepo) Upsert(context.Context, models.Record) error { return errBroken }
func (brokenRepo) DeleteByDate(context.Context, time.Time) error { return errBroken }
func (brokenRepo) Close() error { return nil }

func TestNewServer(t *testing.T) {
	server, _ := setupServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
	if server.logger == nil {
		t.Error("Expected nil logger to be replaced")
	}
}

func TestHandleUpsertRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     upsertRecordInput
		want      recordOutput
		wantErr   bool
		errSubstr string
	}{
		{
			name: "full record",
			input: upsertRecordInput{
				Date:            "2024-01-02",
				ExerciseMinutes: intPtr(45),
				SleepHours:      floatPtr(6.5),
				Mood:            "great",
				Memo:            "ran",
			},
			want: recordOutput{Date: "2024-01-02", Exercise: 45, Sleep: 6.5, Mood: string(models.MoodGreat), Memo: "ran"},
		},
		{
			name:  "defaults",
			input: upsertRecordInput{Date: "2024-01-03"},
			want:  recordOutput{Date: "2024-01-03", Exercise: 30, Sleep: 7, Mood: string(models.MoodGreat)},
		},
		{
			name: "clamped values",
			input: upsertRecordInput{
				Date:            "2024-01-04",
				ExerciseMinutes: intPtr(-5),
				SleepHours:      floatPtr(30),
				Mood:            string(models.MoodTired),
			},
			want: recordOutput{Date: "2024-01-04", Exercise: 0, Sleep: 24, Mood: string(models.MoodTired)},
		},
		{
			name:      "invalid date",
			input:     upsertRecordInput{Date: "tomorrow"},
			wantErr:   true,
			errSubstr: "invalid date",
		},
		{
			name:      "invalid mood",
			input:     upsertRecordInput{Date: "2024-01-05", Mood: "ecstatic"},
			wantErr:   true,
			errSubstr: "unknown mood",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, db := setupServer(t)

			_, output, err := server.handleUpsertRecord(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Expected error containing %q, got %q", tt.errSubstr, err.Error())
				}
				records, _ := db.LoadAll(ctx)
				if len(records) != 0 {
					t.Errorf("Expected no records after failed upsert, got %d", len(records))
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if output.Message == "" {
				t.Error("Expected a message")
			}
			output.Message = ""
			if output != tt.want {
				t.Errorf("output = %+v, want %+v", output, tt.want)
			}

			records, err := db.LoadAll(ctx)
			if err != nil {
				t.Fatalf("LoadAll failed: %v", err)
			}
			if len(records) != 1 || records[0].DateKey() != tt.want.Date {
				t.Errorf("stored records = %+v", records)
			}
		})
	}
}

func TestHandleUpsertRecordReplacesDate(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()
	seed(t, db)

	_, _, err := server.handleUpsertRecord(ctx, &mcp.CallToolRequest{}, upsertRecordInput{
		Date: "2024-01-02", ExerciseMinutes: intPtr(0), SleepHours: floatPtr(9), Mood: "tired",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	records, _ := db.LoadAll(ctx)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[1].Memo != "" || records[1].Mood != models.MoodTired {
		t.Errorf("record not replaced in full: %+v", records[1])
	}
}

func TestHandleListRecords(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()
	seed(t, db)

	tests := []struct {
		name  string
		input listRecordsInput
		want  []string
	}{
		{"all", listRecordsInput{}, []string{"2024-01-01", "2024-01-02"}},
		{"since", listRecordsInput{Since: "2024-01-02"}, []string{"2024-01-02"}},
		{"limit keeps latest", listRecordsInput{Limit: 1}, []string{"2024-01-02"}},
		{"limit above count", listRecordsInput{Limit: 10}, []string{"2024-01-01", "2024-01-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListRecords(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.Count != len(tt.want) {
				t.Fatalf("Count = %d, want %d", output.Count, len(tt.want))
			}
			for i, d := range tt.want {
				if output.Records[i].Date != d {
					t.Errorf("Records[%d].Date = %q, want %q", i, output.Records[i].Date, d)
				}
			}
		})
	}
}

func TestHandleListRecordsEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, output, err := server.handleListRecords(context.Background(), &mcp.CallToolRequest{}, listRecordsInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Count != 0 || output.Records == nil {
		t.Errorf("Expected empty non-nil records, got %+v", output)
	}
	if output.Message != "No records found." {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestHandleListRecordsInvalidSince(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleListRecords(context.Background(), &mcp.CallToolRequest{}, listRecordsInput{Since: "last week"})
	if err == nil {
		t.Error("Expected error for invalid since date")
	}
}

func TestHandleDeleteRecord(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()
	seed(t, db)

	for i := 0; i < 2; i++ {
		_, output, err := server.handleDeleteRecord(ctx, &mcp.CallToolRequest{}, deleteRecordInput{Date: "2024-01-01"})
		if err != nil {
			t.Fatalf("delete %d: unexpected error: %v", i, err)
		}
		if !strings.Contains(output.Message, "2024-01-01") {
			t.Errorf("Message = %q", output.Message)
		}
	}

	records, _ := db.LoadAll(ctx)
	if len(records) != 1 || records[0].DateKey() != "2024-01-02" {
		t.Errorf("records after delete = %+v", records)
	}
}

func TestHandleDeleteRecordInvalidDate(t *testing.T) {
	server, _ := setupServer(t)

	_, _, err := server.handleDeleteRecord(context.Background(), &mcp.CallToolRequest{}, deleteRecordInput{Date: ""})
	if err == nil {
		t.Error("Expected error for empty date")
	}
}

func TestHandleGetSummary(t *testing.T) {
	server, db := setupServer(t)
	seed(t, db)

	_, output, err := server.handleGetSummary(context.Background(), &mcp.CallToolRequest{}, getSummaryInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Count != 2 {
		t.Errorf("Count = %d, want 2", output.Count)
	}
	if output.AverageSleepHours != 6.75 {
		t.Errorf("AverageSleepHours = %v, want 6.75", output.AverageSleepHours)
	}
	if output.TotalExerciseMinutes != 75 {
		t.Errorf("TotalExerciseMinutes = %d, want 75", output.TotalExerciseMinutes)
	}
	if output.MostRecentMood != string(models.MoodGreat) {
		t.Errorf("MostRecentMood = %q", output.MostRecentMood)
	}
}

func TestHandleGetSummaryEmpty(t *testing.T) {
	server, _ := setupServer(t)

	_, output, err := server.handleGetSummary(context.Background(), &mcp.CallToolRequest{}, getSummaryInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Count != 0 || output.Message != "No records yet." {
		t.Errorf("output = %+v", output)
	}
}

func TestHandlersSurfaceStoreErrors(t *testing.T) {
	server, err := NewServer(brokenRepo{}, nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	if _, _, err := server.handleUpsertRecord(ctx, req, upsertRecordInput{Date: "2024-01-01"}); !errors.Is(err, errBroken) {
		t.Errorf("upsert error = %v", err)
	}
	if _, _, err := server.handleListRecords(ctx, req, listRecordsInput{}); !errors.Is(err, errBroken) {
		t.Errorf("list error = %v", err)
	}
	if _, _, err := server.handleDeleteRecord(ctx, req, deleteRecordInput{Date: "2024-01-01"}); !errors.Is(err, errBroken) {
		t.Errorf("delete error = %v", err)
	}
	if _, _, err := server.handleGetSummary(ctx, req, getSummaryInput{}); !errors.Is(err, errBroken) {
		t.Errorf("summary error = %v", err)
	}
	if _, err := server.handleRecordsResource(ctx, &mcp.ReadResourceRequest{}); !errors.Is(err, errBroken) {
		t.Errorf("records resource error = %v", err)
	}
}

func TestHandleRecordsResource(t *testing.T) {
	server, db := setupServer(t)
	seed(t, db)

	result, err := server.handleRecordsResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != recordsURI || content.MIMEType != "application/json" {
		t.Errorf("content = %+v", content)
	}

	var body struct {
		Records []storage.RecordPayload `json:"records"`
	}
	if err := json.Unmarshal([]byte(content.Text), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(body.Records) != 2 || body.Records[1].Memo != "ran" {
		t.Errorf("records = %+v", body.Records)
	}
}

func TestHandleSummaryResource(t *testing.T) {
	server, db := setupServer(t)
	seed(t, db)

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var sum models.Summary
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &sum); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if sum.TotalExerciseMinutes != 75 || sum.MostRecentMood != models.MoodGreat {
		t.Errorf("summary = %+v", sum)
	}
}

func TestHandleSummaryResourceEmpty(t *testing.T) {
	server, _ := setupServer(t)

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(result.Contents[0].Text, `"count": 0`) {
		t.Errorf("Expected zero summary, got %s", result.Contents[0].Text)
	}
}

func TestHandleExportResource(t *testing.T) {
	server, db := setupServer(t)
	seed(t, db)

	result, err := server.handleExportResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "date,exercise,sleep,mood,memo\n" +
		"2024-01-01,30,7.0,🙂 普通,\n" +
		"2024-01-02,45,6.5,😊 最高,ran\n"
	if got := result.Contents[0].Text; got != want {
		t.Errorf("export =\n%s\nwant\n%s", got, want)
	}
	if result.Contents[0].MIMEType != "text/csv" {
		t.Errorf("MIMEType = %q", result.Contents[0].MIMEType)
	}
}

func TestClientSession(t *testing.T) {
	server, db := setupServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"upsert_record", "list_records", "delete_record", "get_summary"} {
		if !names[want] {
			t.Errorf("tool %s not registered", want)
		}
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "upsert_record",
		Arguments: map[string]any{"date": "2024-02-01", "exercise_minutes": 20, "mood": "okay"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("upsert_record returned tool error: %+v", res.Content)
	}

	records, _ := db.LoadAll(ctx)
	if len(records) != 1 || records[0].ExerciseMinutes != 20 || records[0].Mood != models.MoodOkay {
		t.Errorf("stored records = %+v", records)
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "delete_record",
		Arguments: map[string]any{"date": "not-a-date"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("Expected tool error for invalid date")
	}

	read, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: exportURI})
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if !strings.Contains(read.Contents[0].Text, "2024-02-01,20,7.0,🙂 普通,") {
		t.Errorf("export resource = %q", read.Contents[0].Text)
	}
}
