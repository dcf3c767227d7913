package display

// IconChange is one recorded SetIcon call.
type IconChange struct {
	Icon Icon
	On   bool
}

// FakeDisplay records display calls for test assertions. The embedded State
// holds the latest values.
type FakeDisplay struct {
	State

	// Shows records the refresh flag of every Show call.
	Shows []bool

	// Alerts records every Alert call, including clears.
	Alerts []string

	// Levels records every SetBrightness value.
	Levels []float64

	// IconChanges records every SetIcon call.
	IconChanges []IconChange

	// Ticks counts SetClockTick calls.
	Ticks int

	// ShowError, if set, will be returned by Show().
	ShowError error
}

// NewFakeDisplay creates a FakeDisplay showing °F.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{State: State{Scale: Fahrenheit}}
}

func (f *FakeDisplay) Alert(msg string) {
	f.Alerts = append(f.Alerts, msg)
	f.State.Alert(msg)
}

func (f *FakeDisplay) SetBrightness(level float64) {
	f.Levels = append(f.Levels, level)
	f.State.SetBrightness(level)
}

func (f *FakeDisplay) SetIcon(icon Icon, on bool) {
	f.IconChanges = append(f.IconChanges, IconChange{icon, on})
	f.State.SetIcon(icon, on)
}

func (f *FakeDisplay) SetClockTick(on bool) {
	f.Ticks++
	f.State.SetClockTick(on)
}

// Show records the call.
func (f *FakeDisplay) Show(refresh bool) error {
	if f.ShowError != nil {
		return f.ShowError
	}
	f.Shows = append(f.Shows, refresh)
	return nil
}

// Messages returns the recorded alerts, skipping clears.
func (f *FakeDisplay) Messages() []string {
	var out []string
	for _, a := range f.Alerts {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// IconPulses counts how many times icon was switched on.
func (f *FakeDisplay) IconPulses(icon Icon) int {
	n := 0
	for _, c := range f.IconChanges {
		if c.Icon == icon && c.On {
			n++
		}
	}
	return n
}

// Reset clears recorded calls, keeping the State.
func (f *FakeDisplay) Reset() {
	f.Shows = nil
	f.Alerts = nil
	f.Levels = nil
	f.IconChanges = nil
	f.Ticks = 0
}
