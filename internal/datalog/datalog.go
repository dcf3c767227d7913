// Package datalog appends upload-cadence records to a CSV file on
// removable storage. The file is opened and closed on every write.
package datalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// ErrNoMedium is returned when the storage directory is not present.
var ErrNoMedium = errors.New("datalog: no storage medium")

// TimestampLayout formats the record timestamp as "YYYY-MM-DD, HH:MM:SS".
const TimestampLayout = "2006-01-02, 15:04:05"

// Log appends one record per call.
type Log interface {
	Append(record string) error
}

// FileLog appends to a file inside a mount directory.
type FileLog struct {
	dir  string
	name string
}

// NewFileLog creates a FileLog writing dir/name. The directory is checked on
// every Append, so a card inserted later is picked up.
func NewFileLog(dir, name string) *FileLog {
	return &FileLog{dir: dir, name: name}
}

// Path returns the log file path.
func (l *FileLog) Path() string {
	return filepath.Join(l.dir, l.name)
}

// Present reports whether the storage directory exists.
func (l *FileLog) Present() bool {
	fi, err := os.Stat(l.dir)
	return err == nil && fi.IsDir()
}

// Append writes record, adding a trailing newline if missing.
func (l *FileLog) Append(record string) error {
	if !l.Present() {
		return ErrNoMedium
	}
	if len(record) == 0 || record[len(record)-1] != '\n' {
		record += "\n"
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("datalog: open: %w", err)
	}
	if _, err := f.WriteString(record); err != nil {
		f.Close()
		return fmt.Errorf("datalog: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("datalog: close: %w", err)
	}
	return nil
}

// FormatRecord renders "<timestamp>, <temp_f>, <humidity>, <dewpoint_f>".
func FormatRecord(t time.Time, tempF, humidity, dewF logic.NullFloat) string {
	return fmt.Sprintf("%s, %s, %s, %s", t.Format(TimestampLayout), tempF, humidity, dewF)
}
