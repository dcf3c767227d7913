// Package gpio drives the cooling fan output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Fan switches the enclosure cooling fan.
type Fan interface {
	// Set drives the fan line: true = running.
	Set(on bool) error

	// Close turns the fan off and releases GPIO resources.
	Close() error
}

// DefaultPinFan is the fan output (BCM numbering), the 3-pin header on D4.
const DefaultPinFan = 4
