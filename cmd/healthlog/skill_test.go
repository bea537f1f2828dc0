// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates confirmation handling, file placement, and embedded content.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSkillInstallWithYes(t *testing.T) {
	home := t.TempDir()
	var out bytes.Buffer

	if err := installSkill(strings.NewReader(""), &out, home, true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	path := filepath.Join(home, ".claude", "skills", "healthlog", "SKILL.md")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	if info.Mode().Perm()&0600 != 0600 {
		t.Errorf("Expected file to be rw for owner, got %v", info.Mode())
	}
	if !strings.Contains(out.String(), "Installed healthlog skill") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestSkillInstallConfirm(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		installed bool
	}{
		{"yes", "y\n", true},
		{"full yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			var out bytes.Buffer

			if err := installSkill(strings.NewReader(tt.answer), &out, home, false); err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}

			_, err := os.Stat(skillPath(home))
			if got := err == nil; got != tt.installed {
				t.Errorf("installed = %v, want %v", got, tt.installed)
			}
			if !tt.installed && !strings.Contains(out.String(), "Installation canceled.") {
				t.Errorf("Expected cancel message, got:\n%s", out.String())
			}
		})
	}
}

func TestSkillInstallOverwritesExistingFile(t *testing.T) {
	home := t.TempDir()
	path := skillPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create skill directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("stale content"), 0644); err != nil {
		t.Fatalf("Failed to write old skill file: %v", err)
	}

	var out bytes.Buffer
	if err := installSkill(strings.NewReader(""), &out, home, true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read skill file: %v", err)
	}
	if strings.Contains(string(data), "stale content") {
		t.Error("Old content should have been replaced")
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Error("Expected overwrite note in output")
	}
}

func TestSkillFSReadEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill/SKILL.md: %v", err)
	}

	contentStr := string(content)
	if !strings.HasPrefix(contentStr, "---") {
		t.Error("Expected SKILL.md to start with YAML frontmatter (---)")
	}

	for _, marker := range []string{
		"name: healthlog",
		"description:",
		"## When to use healthlog",
		"mcp__healthlog__upsert_record",
		"mcp__healthlog__list_records",
		"mcp__healthlog__delete_record",
		"mcp__healthlog__get_summary",
	} {
		if !strings.Contains(contentStr, marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}
}
