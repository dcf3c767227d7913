package sensor

import (
	"fmt"
	"log"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/sht3x"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// SHT31 settle delays before each measurement.
const (
	DefaultTempDelay     = 3 * time.Second
	DefaultHumidityDelay = 4 * time.Second
)

// SHT31 heater commands.
var (
	cmdHeaterOn  = []byte{0x30, 0x6D}
	cmdHeaterOff = []byte{0x30, 0x66}
)

// txBus remembers the first bus error of a transaction sequence.
// sht3x discards Tx errors, which would otherwise surface as -45°C / 0%.
type txBus struct {
	bus drivers.I2C
	err error
}

func (b *txBus) Tx(addr uint16, w, r []byte) error {
	err := b.bus.Tx(addr, w, r)
	if err != nil && b.err == nil {
		b.err = err
	}
	return err
}

// SHT31 is a Sensirion SHT31-D temperature/humidity sensor.
type SHT31 struct {
	TempDelay     time.Duration
	HumidityDelay time.Duration

	bus   *txBus
	dev   sht3x.Device
	sleep func(time.Duration)
}

// NewSHT31 creates an SHT31 on bus. addr 0 selects the default address.
// sleep is used for the settle delays; nil means time.Sleep.
func NewSHT31(bus drivers.I2C, addr uint16, sleep func(time.Duration)) *SHT31 {
	if sleep == nil {
		sleep = time.Sleep
	}
	tb := &txBus{bus: bus}
	dev := sht3x.New(tb)
	if addr != 0 {
		dev.Address = addr
	}
	return &SHT31{
		TempDelay:     DefaultTempDelay,
		HumidityDelay: DefaultHumidityDelay,
		bus:           tb,
		dev:           dev,
		sleep:         sleep,
	}
}

// Read takes a temperature and then a humidity measurement, each after its
// settle delay. A failed measurement yields None for that value only.
func (s *SHT31) Read() logic.RawClimate {
	var raw logic.RawClimate

	s.sleep(s.TempDelay)
	if mc, _, err := s.measure(); err != nil {
		log.Printf("sht31: temperature: %v", err)
	} else {
		raw.TempC = logic.Some(float64(mc) / 1000)
	}

	s.sleep(s.HumidityDelay)
	if _, rh, err := s.measure(); err != nil {
		log.Printf("sht31: humidity: %v", err)
	} else {
		raw.HumidityPct = logic.Some(float64(rh) / 100)
	}

	return raw
}

func (s *SHT31) measure() (int32, int16, error) {
	s.bus.err = nil
	mc, rh, err := s.dev.ReadTemperatureHumidity()
	if err == nil {
		err = s.bus.err
	}
	return mc, rh, err
}

// SetHeater switches the internal heater.
func (s *SHT31) SetHeater(on bool) error {
	cmd := cmdHeaterOff
	if on {
		cmd = cmdHeaterOn
	}
	if err := s.bus.bus.Tx(s.dev.Address, cmd, nil); err != nil {
		return fmt.Errorf("sht31: heater: %w", err)
	}
	return nil
}
