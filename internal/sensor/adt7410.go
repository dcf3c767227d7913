package sensor

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// ADT7410 registers and commands.
const (
	ADT7410Address = 0x48

	adtRegTemp   = 0x00
	adtRegConfig = 0x03
	adtRegID     = 0x0B
	adtCmdReset  = 0x2F

	adtConfig16Bit = 0x80
	adtIDMask      = 0xF8
	adtID          = 0xC8

	// DefaultPCBDelay is waited before each board temperature read.
	DefaultPCBDelay = 500 * time.Millisecond
)

// ADT7410 is the board-mounted temperature sensor, run in 16-bit mode.
type ADT7410 struct {
	Delay time.Duration

	dev   i2c.Dev
	sleep func(time.Duration)
}

// NewADT7410 resets the sensor, verifies its ID and selects 16-bit
// resolution. addr 0 selects ADT7410Address.
func NewADT7410(bus i2c.Bus, addr uint16, sleep func(time.Duration)) (*ADT7410, error) {
	if addr == 0 {
		addr = ADT7410Address
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	d := &ADT7410{
		Delay: DefaultPCBDelay,
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		sleep: sleep,
	}

	if err := d.dev.Tx([]byte{adtCmdReset}, nil); err != nil {
		return nil, fmt.Errorf("adt7410: reset: %w", err)
	}
	sleep(time.Millisecond)

	var id [1]byte
	if err := d.dev.Tx([]byte{adtRegID}, id[:]); err != nil {
		return nil, fmt.Errorf("adt7410: read id: %w", err)
	}
	if id[0]&adtIDMask != adtID {
		return nil, fmt.Errorf("adt7410: unexpected id 0x%02X at 0x%02X", id[0], addr)
	}

	if err := d.dev.Tx([]byte{adtRegConfig, adtConfig16Bit}, nil); err != nil {
		return nil, fmt.Errorf("adt7410: configure: %w", err)
	}
	return d, nil
}

// Read returns the board temperature in °C rounded to 0.1, or None.
func (d *ADT7410) Read() logic.NullFloat {
	d.sleep(d.Delay)
	var b [2]byte
	if err := d.dev.Tx([]byte{adtRegTemp}, b[:]); err != nil {
		log.Printf("adt7410: %v", err)
		return logic.None
	}
	raw := int16(binary.BigEndian.Uint16(b[:]))
	return logic.Some(logic.Round1(float64(raw) / 128))
}
