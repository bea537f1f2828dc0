// ABOUTME: Integration tests for healthlog CLI.
// ABOUTME: Tests full workflow from CLI commands against a built binary.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "healthlog")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/healthlog")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	// Use a temp data directory and keep the user's config out of the way
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	env := append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"HEALTHLOG_BACKEND=",
		"HEALTHLOG_DATA_DIR=",
	)

	run := func(args ...string) (string, error) {
		fullArgs := append([]string{"--backend", "csv", "--data-dir", dataDir}, args...)
		cmd := exec.Command(binary, fullArgs...)
		cmd.Dir = tmpDir
		cmd.Env = env
		output, err := cmd.Output()
		return string(output), err
	}

	output, err := run("add", "2024-01-01", "-e", "30", "-s", "7", "-m", "okay")
	if err != nil {
		t.Fatalf("Failed to add record: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Recorded 2024-01-01") {
		t.Errorf("Expected 'Recorded 2024-01-01' in output, got: %s", output)
	}

	output, err = run("add", "2024-01-02", "-e", "45", "-s", "6.5", "-m", "great", "--memo", "ran")
	if err != nil {
		t.Fatalf("Failed to add record: %v\n%s", err, output)
	}

	output, err = run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if strings.Index(output, "2024-01-01") > strings.Index(output, "2024-01-02") {
		t.Errorf("Expected records in date order, got: %s", output)
	}

	output, err = run("summary")
	if err != nil {
		t.Fatalf("Failed to summarize: %v\n%s", err, output)
	}
	if !strings.Contains(output, "6.8 h") || !strings.Contains(output, "75 min") {
		t.Errorf("Expected averages in summary, got: %s", output)
	}

	// The CSV backend file and the export share one format
	output, err = run("export", "csv")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	stored, err := os.ReadFile(filepath.Join(dataDir, "health_data.csv"))
	if err != nil {
		t.Fatalf("Failed to read store file: %v", err)
	}
	if output != string(stored) {
		t.Errorf("Export differs from store file:\n%s\nvs\n%s", output, stored)
	}

	output, err = run("delete", "2024-01-01")
	if err != nil {
		t.Fatalf("Failed to delete: %v\n%s", err, output)
	}
	output, err = run("delete", "2024-01-01")
	if err != nil {
		t.Fatalf("Second delete should succeed: %v\n%s", err, output)
	}

	output, err = run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if strings.Contains(output, "2024-01-01") || !strings.Contains(output, "2024-01-02") {
		t.Errorf("Unexpected list after delete: %s", output)
	}
}
