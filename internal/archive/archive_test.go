package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

func TestNewRecord(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)
	r := logic.Reading{
		TempC:       logic.Some(22.2),
		TempF:       logic.Some(72),
		HumidityPct: logic.Some(55),
		DewPointC:   logic.Some(12.7),
		DewPointF:   logic.Some(54.9),
		Level:       logic.CorrosionWarning,
		LevelValid:  true,
	}

	rec := NewRecord(ts, "shop", r, logic.None, true)

	if !rec.Timestamp.Equal(ts) || rec.Node != "shop" {
		t.Errorf("unexpected header: %v %q", rec.Timestamp, rec.Node)
	}
	if rec.TempF == nil || *rec.TempF != 72 {
		t.Errorf("TempF: got %v", rec.TempF)
	}
	if rec.DewPointF == nil || *rec.DewPointF != 54.9 {
		t.Errorf("DewPointF: got %v", rec.DewPointF)
	}
	if rec.PCBC != nil {
		t.Errorf("PCBC: expected NULL, got %v", *rec.PCBC)
	}
	if rec.Level != 1 || !rec.LevelValid || !rec.FanOn {
		t.Errorf("unexpected flags: level=%d valid=%v fan=%v", rec.Level, rec.LevelValid, rec.FanOn)
	}
}

func TestNewRecordDoesNotAlias(t *testing.T) {
	r := logic.Reading{TempC: logic.Some(20)}
	rec := NewRecord(time.Time{}, "n", r, logic.None, false)
	r.TempC.Float64 = 99
	if *rec.TempC != 20 {
		t.Errorf("record should hold a copy, got %v", *rec.TempC)
	}
}

func TestSchema(t *testing.T) {
	tables := AllTables()
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	for _, col := range []string{"timestamp", "dew_point_f", "corrosion_level", "fan_on"} {
		if !strings.Contains(tables[0], col) {
			t.Errorf("schema missing column %s", col)
		}
	}
}

func TestFakeArchive(t *testing.T) {
	f := &FakeArchive{}
	ctx := context.Background()

	if err := f.Save(ctx, Record{Node: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.SaveError = errors.New("down")
	if err := f.Save(ctx, Record{Node: "b"}); err == nil {
		t.Error("expected error")
	}
	if len(f.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(f.Records))
	}
}

var _ Archiver = (*Store)(nil)
var _ Archiver = (*FakeArchive)(nil)
