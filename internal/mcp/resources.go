// ABOUTME: MCP resource implementations for daily health records.
// ABOUTME: Provides healthlog://records, healthlog://summary, and healthlog://export.csv.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recordsURI = "healthlog://records"
	summaryURI = "healthlog://summary"
	exportURI  = "healthlog://export.csv"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recordsURI,
		Name:        "Health Records",
		Description: "Every daily record in date order",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Health Summary",
		Description: "Average sleep, total exercise and latest mood",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         exportURI,
		Name:        "Health Records CSV",
		Description: "CSV export with header date,exercise,sleep,mood,memo",
		MIMEType:    "text/csv",
	}, s.handleExportResource)
}

// Resource handlers

func (s *Server) handleRecordsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	payload := make([]storage.RecordPayload, 0, len(records))
	for _, r := range records {
		payload = append(payload, storage.NewRecordPayload(r))
	}
	return jsonResource(recordsURI, map[string]interface{}{"records": payload})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return jsonResource(summaryURI, models.Summarize(records))
}

func (s *Server) handleExportResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	data, err := storage.ExportCSV(records)
	if err != nil {
		return nil, fmt.Errorf("failed to export records: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      exportURI,
			MIMEType: "text/csv",
			Text:     string(data),
		}},
	}, nil
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
