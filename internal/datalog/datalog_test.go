package datalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

func TestFormatRecord(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

	got := FormatRecord(ts, logic.Some(72), logic.Some(55), logic.Some(54.9))
	want := "2026-03-14, 09:05:00, 72.0, 55.0, 54.9"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatRecordMissingValues(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

	got := FormatRecord(ts, logic.None, logic.Some(61.2), logic.None)
	want := "2026-03-14, 09:05:00, None, 61.2, None"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFileLogAppend(t *testing.T) {
	dir := t.TempDir()
	l := NewFileLog(dir, "logfile.csv")

	if err := l.Append("first"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append("second\n"); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "logfile.csv"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("file contents: got %q", data)
	}
}

func TestFileLogNoMedium(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sd")
	l := NewFileLog(dir, "logfile.csv")

	if l.Present() {
		t.Fatal("missing directory should not be present")
	}
	err := l.Append("record")
	if !errors.Is(err, ErrNoMedium) {
		t.Fatalf("expected ErrNoMedium, got %v", err)
	}

	// Inserting the card later is picked up on the next write.
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := l.Append("record"); err != nil {
		t.Errorf("append after mount: %v", err)
	}
}

func TestFakeLog(t *testing.T) {
	f := NewFakeLog()
	if f.Last() != "" {
		t.Error("empty log should have no last record")
	}
	f.Append("a")
	f.Append("b")
	if f.Last() != "b" || len(f.Records) != 2 {
		t.Errorf("got %v", f.Records)
	}

	f.AppendError = ErrNoMedium
	if err := f.Append("c"); !errors.Is(err, ErrNoMedium) {
		t.Errorf("expected ErrNoMedium, got %v", err)
	}
	if len(f.Records) != 2 {
		t.Error("failed append must not be recorded")
	}
}

var _ Log = (*FileLog)(nil)
var _ Log = (*FakeLog)(nil)
