package light

import (
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// DefaultReference is the full-scale voltage of the phototransistor divider.
const DefaultReference = 3300 * physic.MilliVolt

// Address is the ADS1115 address with ADDR tied to VDD; 0x48 is taken by
// the ADT7410 on the same bus.
const Address = 0x49

// ADS1115 reads a phototransistor through one single-ended ADS1115 channel.
type ADS1115 struct {
	pin       analog.PinADC
	reference physic.ElectricPotential
}

// NewADS1115 opens channel (0-3) of an ADS1115 at Address.
func NewADS1115(bus i2c.Bus, channel int, reference physic.ElectricPotential) (*ADS1115, error) {
	if channel < 0 || channel > 3 {
		return nil, fmt.Errorf("ads1115: invalid channel %d", channel)
	}
	if reference <= 0 {
		reference = DefaultReference
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: Address})
	if err != nil {
		return nil, fmt.Errorf("ads1115: %w", err)
	}

	channels := []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}
	pin, err := adc.PinForChannel(channels[channel], 5*physic.Volt, 860*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ads1115: channel %d: %w", channel, err)
	}

	return &ADS1115{pin: pin, reference: reference}, nil
}

// Sample returns the reading scaled so reference maps to 65535.
func (a *ADS1115) Sample() (float64, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ads1115: read: %w", err)
	}
	v := float64(s.V) / float64(a.reference) * logic.FullScale
	return logic.Clamp(v, 0, logic.FullScale), nil
}

// Close halts the ADC pin.
func (a *ADS1115) Close() error {
	return a.pin.Halt()
}
