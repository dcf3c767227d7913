// Package sensor reads the workshop climate (SHT31-D) and the board
// temperature (ADT7410) over I²C. Unavailable readings are reported as
// logic.None rather than errors.
package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// Climate reads ambient temperature and humidity and controls the
// sensor's internal heater.
type Climate interface {
	// Read blocks for the sensor settle delays and returns the raw values.
	Read() logic.RawClimate

	// SetHeater switches the condensation heater.
	SetHeater(on bool) error
}

// PCB reads the board temperature in °C.
type PCB interface {
	Read() logic.NullFloat
}

// OpenBus initializes the host drivers and opens the named I²C bus.
// An empty name opens the first available bus.
func OpenBus(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return bus, nil
}
