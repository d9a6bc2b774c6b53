package display

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// inkIn reports whether any pixel is lit in the given x band of one row.
func inkIn(img *image1bit.VerticalLSB, x0, x1, row int) bool {
	for y := lineHeight * row; y < lineHeight*(row+1); y++ {
		for x := x0; x < x1; x++ {
			if img.BitAt(x, y) == image1bit.On {
				return true
			}
		}
	}
	return false
}

func TestRenderFrameFitsAllColumns(t *testing.T) {
	var buf [Rows][Cols]byte
	for r := range buf {
		for c := range buf[r] {
			buf[r][c] = ' '
		}
	}
	// full-width date line; the seconds field occupies the last columns
	copy(buf[1][:], "Tue Nov 14  10:00:59")

	img := renderFrame(&buf)

	// the last column's band must lie on the panel and carry ink
	lastBand := (Cols - 1) * charPitch
	require.Less(t, lastBand+charPitch, oledWidth)
	require.True(t, inkIn(img, lastBand, lastBand+charPitch, 1),
		"column %d must be visible on the panel", Cols-1)
	require.True(t, inkIn(img, 0, charPitch, 1))
}

func TestRenderFrameBlankRowHasNoInk(t *testing.T) {
	var buf [Rows][Cols]byte
	for r := range buf {
		for c := range buf[r] {
			buf[r][c] = ' '
		}
	}

	img := renderFrame(&buf)
	require.False(t, inkIn(img, 0, oledWidth, 2))
}
