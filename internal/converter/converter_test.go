package converter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"报告.docx", true},
		{"report.DOC", true},
		{"notes.txt", false},
		{"archive.pdf", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsSupported(tt.name); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestConvertMissingCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.docx")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c := New("definitely-not-a-real-command")
	if _, err := c.Convert(ctx, input, dir); err == nil {
		t.Fatal("expected error when converter command does not exist")
	}
}

func TestNewDefaultsToSoffice(t *testing.T) {
	if c := New(""); c.command != "soffice" {
		t.Fatalf("command = %q, want soffice", c.command)
	}
}
