package display

import (
	"fmt"
	"image"
	"math"
	"slices"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const lineHeight = 13

// OLED renders State on a 128x64 SSD1306 over I²C.
type OLED struct {
	State

	dev      *ssd1306.Dev
	now      func() time.Time
	last     []string
	contrast int
}

// NewOLED opens the display. now supplies the clock shown on screen.
func NewOLED(bus i2c.Bus, scale Scale, now func() time.Time) (*OLED, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &OLED{
		State:    State{Scale: scale, Brightness: 1},
		dev:      dev,
		now:      now,
		contrast: -1,
	}, nil
}

// Show redraws when the text changed or refresh is set, and applies the
// brightness as panel contrast.
func (o *OLED) Show(refresh bool) error {
	if c := int(math.Round(o.Brightness * 255)); c != o.contrast {
		if err := o.dev.SetContrast(byte(c)); err != nil {
			return fmt.Errorf("ssd1306: contrast: %w", err)
		}
		o.contrast = c
	}

	lines := o.Lines(o.now())
	if !refresh && slices.Equal(lines, o.last) {
		return nil
	}

	img := image1bit.NewVerticalLSB(o.dev.Bounds())
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		drawer.Dot = fixed.P(0, (i+1)*lineHeight-2)
		drawer.DrawString(l)
	}

	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("ssd1306: draw: %w", err)
	}
	o.last = lines
	return nil
}

// Close blanks the panel.
func (o *OLED) Close() error {
	return o.dev.Halt()
}
