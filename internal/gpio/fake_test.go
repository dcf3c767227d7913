package gpio

import (
	"errors"
	"testing"
)

func TestFakeFanSet(t *testing.T) {
	f := NewFakeFan()

	if err := f.Set(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.On {
		t.Error("expected fan on")
	}

	if err := f.Set(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.On {
		t.Error("expected fan off")
	}

	if len(f.States) != 2 || f.States[0] != true || f.States[1] != false {
		t.Errorf("expected states [true false], got %v", f.States)
	}
}

func TestFakeFanToggles(t *testing.T) {
	f := NewFakeFan()
	for _, s := range []bool{false, true, true, true, false, false, true} {
		f.Set(s)
	}
	if got := f.Toggles(); got != 3 {
		t.Errorf("expected 3 toggles, got %d", got)
	}
}

func TestFakeFanError(t *testing.T) {
	f := NewFakeFan()
	f.SetError = errors.New("simulated error")

	err := f.Set(true)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
	if f.On || len(f.States) != 0 {
		t.Error("failed Set must not record state")
	}
}

func TestFakeFanClose(t *testing.T) {
	f := NewFakeFan()
	f.Set(true)

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if f.On {
		t.Error("fan should be off after Close()")
	}
}

func TestFakeFanReset(t *testing.T) {
	f := NewFakeFan()
	f.Set(true)
	f.Close()

	f.Reset()

	if f.On || f.Closed || len(f.States) != 0 {
		t.Errorf("after reset: got on=%v closed=%v states=%v", f.On, f.Closed, f.States)
	}
}

var _ Fan = (*FakeFan)(nil)
var _ Fan = (*RealFan)(nil)
