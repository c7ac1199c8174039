package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadSeedFile_JSON(t *testing.T) {
	path := writeFile(t, "seed.json", `[
		{"source":"email","content":"love it","author":"ann","created_at":"2024-03-01T10:00:00Z"},
		{"content":"app crashes"}
	]`)

	inputs, err := readSeedFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("len = %d, want 2", len(inputs))
	}
	if inputs[0].Author != "ann" || !inputs[0].CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("first = %+v", inputs[0])
	}
	if inputs[1].Source != "" || inputs[1].Content != "app crashes" {
		t.Errorf("second = %+v", inputs[1])
	}
}

func TestReadSeedFile_YAML(t *testing.T) {
	path := writeFile(t, "seed.yml", `
- source: app_store
  content: billing is confusing
  attachment_ref: s3://bucket/shot.png
- content: fast support
`)

	inputs, err := readSeedFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 || inputs[0].AttachmentRef != "s3://bucket/shot.png" {
		t.Errorf("inputs = %+v", inputs)
	}
}

func TestReadSeedFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"empty list", "seed.json", `[]`, "no records"},
		{"malformed json", "seed.json", `[{"content":`, "parse seed file"},
		{"yaml object instead of list", "seed.yaml", "content: x\n", "parse seed file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readSeedFile(writeFile(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := readSeedFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("a  b\n c", 10); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("приложение падает", 4); got != "прил..." || !utf8.ValidString(got) {
		t.Errorf("got %q", got)
	}
	if got := truncate("app 🚀🚀🚀", 5); got != "app 🚀..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("ok ✓", 4); got != "ok ✓" {
		t.Errorf("got %q", got)
	}
}
