package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/weather_logger/internal/average"
	"github.com/relabs-tech/weather_logger/internal/sample"
)

// memDevice is an in-memory character grid standing in for the panel.
type memDevice struct {
	rows     [Rows][Cols]byte
	col, row int
	cleared  int
}

func newMemDevice() *memDevice {
	d := &memDevice{}
	d.blank()
	return d
}

func (d *memDevice) blank() {
	for r := range d.rows {
		for c := range d.rows[r] {
			d.rows[r][c] = ' '
		}
	}
}

func (d *memDevice) Clear() error {
	d.blank()
	d.col, d.row = 0, 0
	d.cleared++
	return nil
}

func (d *memDevice) SetCursor(col, row int) error {
	d.col, d.row = col, row
	return nil
}

func (d *memDevice) Print(text string) error {
	for i := 0; i < len(text) && d.col < Cols; i++ {
		d.rows[d.row][d.col] = text[i]
		d.col++
	}
	return nil
}

func (d *memDevice) line(row int) string {
	return strings.TrimRight(string(d.rows[row][:]), " ")
}

func testSample() sample.Sample {
	return sample.Sample{
		Millis:       4000,
		Stamp:        1700000000,
		Time:         time.Date(2023, time.November, 14, 10, 0, 0, 0, time.UTC),
		HumidityPct:  45.2,
		TemperatureF: 72.3,
		PressureKPa:  101.3,
	}
}

func TestRefreshLayout(t *testing.T) {
	dev := newMemDevice()
	p := NewPresenter(dev, false)

	require.NoError(t, p.ShowStartup())
	require.NoError(t, p.Refresh(testSample()))

	require.Equal(t, "Weather Logger", dev.line(0))
	require.Equal(t, "Tue Nov 14  10:00:00", dev.line(1))
	require.Equal(t, "H: 45.2% Temp: 72.3F", dev.line(2))
	require.Equal(t, "Press: 101.3 kPa", dev.line(3))
}

func TestRefreshLeavesBannerUntouched(t *testing.T) {
	dev := newMemDevice()
	p := NewPresenter(dev, false)

	require.NoError(t, p.ShowStartup())
	require.NoError(t, p.Refresh(testSample()))
	require.Equal(t, 1, dev.cleared)
	require.Equal(t, "Weather Logger", dev.line(0))
}

func TestShowAverages(t *testing.T) {
	dev := newMemDevice()
	p := NewPresenter(dev, false)

	require.NoError(t, p.ShowAverages(average.Snapshot{
		HumidityPct:  46.05,
		TemperatureF: 71.98,
		PressureKPa:  101.25,
		Count:        10,
	}))

	require.Equal(t, "Avg Hum: 46.0%", dev.line(1))
	require.Equal(t, "Avg Temp: 72.0F", dev.line(2))
	require.Equal(t, "Avg Press: 101.2 kPa", dev.line(3))
}

func TestRefreshOverwritesStaleCharacters(t *testing.T) {
	dev := newMemDevice()
	p := NewPresenter(dev, false)

	require.NoError(t, p.ShowAverages(average.Snapshot{
		HumidityPct: 46, TemperatureF: 72, PressureKPa: 101, Count: 10,
	}))
	require.NoError(t, p.Refresh(testSample()))

	// the longer averages line must not bleed into the refreshed row
	require.Equal(t, "Press: 101.3 kPa", dev.line(3))
}

func TestAdvanceModeCycles(t *testing.T) {
	p := NewPresenter(newMemDevice(), true)

	require.Equal(t, ModeHumidity, p.Mode())
	p.AdvanceMode()
	require.Equal(t, ModeTemperature, p.Mode())
	p.AdvanceMode()
	require.Equal(t, ModePressure, p.Mode())
	p.AdvanceMode()
	require.Equal(t, ModeHumidity, p.Mode())
}

func TestManualModeSingleMetric(t *testing.T) {
	dev := newMemDevice()
	p := NewPresenter(dev, true)

	require.NoError(t, p.Refresh(testSample()))
	require.Equal(t, "Hum: 45.2 %", dev.line(2))
	require.Equal(t, "", dev.line(3))

	p.AdvanceMode()
	require.NoError(t, p.Refresh(testSample()))
	require.Equal(t, "Temp: 72.3 F", dev.line(2))

	p.AdvanceMode()
	require.NoError(t, p.Refresh(testSample()))
	require.Equal(t, "Press: 101.3 kPa", dev.line(2))
}

func TestShowFatalWrapsMessage(t *testing.T) {
	dev := newMemDevice()
	p := NewPresenter(dev, false)

	require.NoError(t, p.ShowFatal("no free log file name on storage"))
	require.Equal(t, "FATAL ERROR", dev.line(0))
	require.Equal(t, "no free log file nam", dev.line(1))
	require.Equal(t, "e on storage", dev.line(2))
}
