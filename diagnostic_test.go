package logsift

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStringDiagnostic(t *testing.T) {
	d := StringDiagnostic("syslog", "boot ok")
	if d.Name() != "syslog" {
		t.Errorf("name = %q, want syslog", d.Name())
	}
	text, err := d.Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "boot ok" {
		t.Errorf("text = %q, want %q", text, "boot ok")
	}
}

func TestFileDiagnostic_ReadsCurrentContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syslog.log")
	if err := os.WriteFile(path, []byte("boot ok"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := FileDiagnostic("syslog", path)
	if d.Name() != "syslog" {
		t.Errorf("name = %q, want syslog", d.Name())
	}

	text, err := d.Text(context.Background())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "boot ok" {
		t.Errorf("text = %q, want %q", text, "boot ok")
	}

	if err := os.WriteFile(path, []byte("ERROR disk full"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	text, err = d.Text(context.Background())
	if err != nil {
		t.Fatalf("Text after rewrite: %v", err)
	}
	if text != "ERROR disk full" {
		t.Errorf("text = %q, want the rewritten content", text)
	}
}

func TestFileDiagnostic_DefaultName(t *testing.T) {
	d := FileDiagnostic("", filepath.Join("var", "log", "syslog.log"))
	if d.Name() != "syslog.log" {
		t.Errorf("name = %q, want syslog.log", d.Name())
	}
}

func TestFileDiagnostic_Missing(t *testing.T) {
	d := FileDiagnostic("gone", filepath.Join(t.TempDir(), "gone.log"))
	_, err := d.Text(context.Background())
	if !errors.Is(err, ErrDiagnosticNotFound) {
		t.Fatalf("err = %v, want ErrDiagnosticNotFound", err)
	}
}
