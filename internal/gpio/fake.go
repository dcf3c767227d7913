package gpio

// FakeFan is a test double that records every state written to it.
type FakeFan struct {
	// States holds each value passed to Set, in order.
	States []bool

	// On is the last state written.
	On bool

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by Set() and the state is not recorded.
	SetError error
}

// NewFakeFan creates a FakeFan that starts off.
func NewFakeFan() *FakeFan {
	return &FakeFan{}
}

// Set records the requested state.
func (f *FakeFan) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States = append(f.States, on)
	f.On = on
	return nil
}

// Close marks the fan as closed and off.
func (f *FakeFan) Close() error {
	f.Closed = true
	f.On = false
	return nil
}

// Toggles counts the number of state changes recorded.
func (f *FakeFan) Toggles() int {
	n := 0
	prev := false
	for _, s := range f.States {
		if s != prev {
			n++
		}
		prev = s
	}
	return n
}

// Reset clears recorded states.
func (f *FakeFan) Reset() {
	f.States = nil
	f.On = false
	f.Closed = false
}
