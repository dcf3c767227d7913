//go:build !linux

package gpio

import "errors"

// RealFan is not available on non-Linux platforms.
type RealFan struct{}

// NewRealFan returns an error on non-Linux platforms.
func NewRealFan(chipName string, pin int) (*RealFan, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (f *RealFan) Set(on bool) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (f *RealFan) Close() error {
	return nil
}
