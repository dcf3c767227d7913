package sensor

import "github.com/sweeney/corrosion-monitor/internal/logic"

// FakeClimate is a test double that returns scripted climate readings.
type FakeClimate struct {
	// Samples contains scripted readings. Each call to Read() consumes the
	// next sample; the last one repeats.
	Samples []logic.RawClimate
	index   int

	// Reads counts calls to Read.
	Reads int

	// Heater records every SetHeater call, in order.
	Heater []bool

	// HeaterError, if set, will be returned by SetHeater()
	HeaterError error
}

// NewFakeClimate creates a FakeClimate with the given samples.
func NewFakeClimate(samples ...logic.RawClimate) *FakeClimate {
	return &FakeClimate{Samples: samples}
}

// Read returns the next scripted sample, or all-None when unscripted.
func (f *FakeClimate) Read() logic.RawClimate {
	f.Reads++
	if len(f.Samples) == 0 {
		return logic.RawClimate{}
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s
}

// SetHeater records the requested heater state.
func (f *FakeClimate) SetHeater(on bool) error {
	if f.HeaterError != nil {
		return f.HeaterError
	}
	f.Heater = append(f.Heater, on)
	return nil
}

// HeaterOn reports the last heater state written.
func (f *FakeClimate) HeaterOn() bool {
	return len(f.Heater) > 0 && f.Heater[len(f.Heater)-1]
}

// Reset rewinds the script and clears recorded calls.
func (f *FakeClimate) Reset() {
	f.index = 0
	f.Reads = 0
	f.Heater = nil
}

// FakePCB is a test double that returns scripted board temperatures.
type FakePCB struct {
	Samples []logic.NullFloat
	index   int
	Reads   int
}

// NewFakePCB creates a FakePCB with the given samples (°C).
func NewFakePCB(samples ...logic.NullFloat) *FakePCB {
	return &FakePCB{Samples: samples}
}

// Read returns the next scripted sample, or None when unscripted.
func (f *FakePCB) Read() logic.NullFloat {
	f.Reads++
	if len(f.Samples) == 0 {
		return logic.None
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s
}
