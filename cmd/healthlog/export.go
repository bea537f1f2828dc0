// ABOUTME: CLI commands for exporting and importing health records.
// ABOUTME: Supports CSV, JSON, YAML, Markdown, and Excel export; CSV and JSON import.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/healthlog/internal/models"
	"github.com/harperreed/healthlog/internal/storage"
	"github.com/spf13/cobra"
)

var exportFormats = []string{"csv", "json", "yaml", "markdown", "xlsx"}

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		since  string
	)

	cmd := &cobra.Command{
		Use:   "export <format>",
		Short: "Export health records",
		Long: `Export health records in various formats.

FORMATS:

  csv        date,exercise,sleep,mood,memo (same as the dashboard download)
  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown table with a summary line
  xlsx       Excel workbook (requires --output)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include records since this date (YYYY-MM-DD)

EXAMPLES:

  healthlog export csv -o health_data.csv
  healthlog export json -o backup.json
  healthlog export markdown --since 2024-01-01
  healthlog export xlsx -o health.xlsx`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: exportFormats,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])

			records, err := a.repo.LoadAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load records: %w", err)
			}
			if since != "" {
				d, err := models.ParseDate(since)
				if err != nil {
					return err
				}
				records = storage.FilterSince(records, d)
			}

			var data []byte
			switch format {
			case "csv":
				data, err = storage.ExportCSV(records)
			case "json":
				data, err = storage.ExportJSON(records)
			case "yaml":
				data, err = storage.ExportYAML(records)
			case "markdown", "md":
				data = []byte(storage.ExportMarkdown(records))
			case "xlsx":
				if output == "" {
					return fmt.Errorf("xlsx export requires --output")
				}
				data, err = storage.ExportXLSX(records)
			default:
				return fmt.Errorf("unknown format: %s (use %s)", format, strings.Join(exportFormats, ", "))
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if output != "" {
				if err := os.WriteFile(output, data, 0600); err != nil {
					return fmt.Errorf("failed to write file: %w", err)
				}
				success(out, "Exported %d records to %s", len(records), output)
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&since, "since", "", "only include records since date (YYYY-MM-DD)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import health records from CSV or JSON",
		Long: `Import health records from a CSV file or a JSON backup.

The format is taken from the file extension unless --format is given.
CSV files may use either the English header (date,exercise,sleep,mood,memo)
or the Japanese column titles of older dashboard downloads.

Each imported record replaces any existing record for the same date.

EXAMPLES:

  healthlog import health_data.csv
  healthlog import backup.json
  healthlog import dump.txt --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			f := strings.ToLower(format)
			if f == "" {
				f = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
			}

			var records []models.Record
			switch f {
			case "csv":
				records, err = storage.ImportCSV(data)
			case "json":
				records, err = storage.ImportJSON(data)
			default:
				return fmt.Errorf("unknown import format %q (use --format csv or json)", f)
			}
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			n, err := storage.ImportRecords(cmd.Context(), a.repo, records)
			if err != nil {
				return fmt.Errorf("import failed after %d records: %w", n, err)
			}

			success(cmd.OutOrStdout(), "Imported %d records from %s", n, filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "input format: csv or json")
	return cmd
}
