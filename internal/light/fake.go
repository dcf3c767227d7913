package light

// FakeLight is a test double that returns scripted light samples.
type FakeLight struct {
	// Level is returned by Sample when Script is empty.
	Level float64

	// Script, if set, is consumed one value per Sample; the last value repeats.
	Script []float64
	index  int

	// Samples counts calls to Sample.
	Samples int

	// SampleError, if set, will be returned by Sample()
	SampleError error
}

// NewFakeLight creates a FakeLight with a constant level.
func NewFakeLight(level float64) *FakeLight {
	return &FakeLight{Level: level}
}

// Sample returns the next scripted value.
func (f *FakeLight) Sample() (float64, error) {
	if f.SampleError != nil {
		return 0, f.SampleError
	}
	f.Samples++
	if len(f.Script) == 0 {
		return f.Level, nil
	}
	v := f.Script[f.index]
	if f.index < len(f.Script)-1 {
		f.index++
	}
	return v, nil
}

// Reset clears the call count and rewinds the script.
func (f *FakeLight) Reset() {
	f.index = 0
	f.Samples = 0
}
