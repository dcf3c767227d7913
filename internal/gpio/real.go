//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealFan drives the fan from actual hardware using the Linux GPIO character device.
type RealFan struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	on   bool
}

// NewRealFan requests pin as an output, initially low (fan off).
func NewRealFan(chipName string, pin int) (*RealFan, error) {
	if chipName == "" {
		chipName = "gpiochip0"
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request fan pin %d: %w", pin, err)
	}

	return &RealFan{chip: chip, line: line}, nil
}

// Set drives the fan line. Repeating the current state does not touch the line.
func (f *RealFan) Set(on bool) error {
	if on == f.on {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	if err := f.line.SetValue(v); err != nil {
		return fmt.Errorf("set fan pin: %w", err)
	}
	f.on = on
	return nil
}

// Close drives the fan off and returns the pin to an input with pull-down
// (matching Pi boot defaults) so the fan stays off across reboot.
func (f *RealFan) Close() error {
	var errs []error

	if f.line != nil {
		if err := f.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive fan off: %w", err))
		}
		if err := f.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure fan pin: %w", err))
		}
		if err := f.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fan pin: %w", err))
		}
	}
	if f.chip != nil {
		if err := f.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
