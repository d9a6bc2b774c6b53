// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	oledWidth  = 128
	oledHeight = 64

	// Face7x13 advances 7px per glyph, which only fits 18 columns in
	// 128px. The glyph ink itself is 6px wide, so drawing each character
	// at a 6px pitch packs all 20 columns (120px) onto the panel.
	charPitch  = 6
	lineHeight = 13 // rows 0..3 at baselines 13/26/39/52
)

// OLED renders the 4x20 character grid on an SSD1306 over I2C.
type OLED struct {
	dev *ssd1306.Dev

	buf      [Rows][Cols]byte
	col, row int
}

// NewOLED wraps an initialized SSD1306 device.
func NewOLED(dev *ssd1306.Dev) *OLED {
	o := &OLED{dev: dev}
	o.blank()
	return o
}

func (o *OLED) blank() {
	for r := range o.buf {
		for c := range o.buf[r] {
			o.buf[r][c] = ' '
		}
	}
	o.col, o.row = 0, 0
}

// Clear blanks the character buffer and the panel.
func (o *OLED) Clear() error {
	o.blank()
	return o.draw()
}

// SetCursor positions the next Print at (col, row).
func (o *OLED) SetCursor(col, row int) error {
	if col < 0 || col >= Cols || row < 0 || row >= Rows {
		return fmt.Errorf("cursor out of range: col=%d row=%d", col, row)
	}
	o.col, o.row = col, row
	return nil
}

// Print writes text at the cursor and redraws the panel. Text past the
// end of the row is dropped.
func (o *OLED) Print(text string) error {
	for _, ch := range []byte(text) {
		if o.col >= Cols {
			break
		}
		o.buf[o.row][o.col] = ch
		o.col++
	}
	return o.draw()
}

func (o *OLED) draw() error {
	return o.dev.Draw(o.dev.Bounds(), renderFrame(&o.buf), image.Point{})
}

// renderFrame rasterizes the character buffer, one glyph at a time at the
// tightened pitch.
func renderFrame(buf *[Rows][Cols]byte) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			drawer.Dot = fixed.P(c*charPitch, lineHeight*(r+1))
			drawer.DrawBytes(buf[r][c : c+1])
		}
	}

	return img
}
