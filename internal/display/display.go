package display

import (
	"fmt"

	"github.com/relabs-tech/weather_logger/internal/average"
	"github.com/relabs-tech/weather_logger/internal/sample"
)

// Rows and Cols describe the character layout every backend exposes.
const (
	Rows = 4
	Cols = 20
)

// Mode selects the metric shown in the manual single-metric view.
type Mode int

const (
	ModeHumidity Mode = iota
	ModeTemperature
	ModePressure

	modeCount
)

func (m Mode) String() string {
	switch m {
	case ModeHumidity:
		return "humidity"
	case ModeTemperature:
		return "temperature"
	case ModePressure:
		return "pressure"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Device is the character display contract the presenter draws on.
// Backends: the SSD1306 OLED (oled.go) and an in-memory device in tests.
type Device interface {
	Clear() error
	SetCursor(col, row int) error
	Print(text string) error
}

// Presenter owns the screen layout and the display mode. It never sleeps;
// the scheduler owns the averages dwell and the debounce delay.
type Presenter struct {
	dev    Device
	mode   Mode
	manual bool // single-metric view, cycled by the mode button
}

// NewPresenter returns a presenter on dev. With manual set, Refresh
// renders only the currently selected metric instead of the full layout.
func NewPresenter(dev Device, manual bool) *Presenter {
	return &Presenter{dev: dev, manual: manual}
}

// Mode returns the currently selected metric.
func (p *Presenter) Mode() Mode {
	return p.mode
}

// AdvanceMode cycles the metric view forward, wrapping after pressure.
func (p *Presenter) AdvanceMode() {
	p.mode = (p.mode + 1) % modeCount
}

// ShowStartup clears the screen and writes the static banner on row 0.
// The banner row is never touched again.
func (p *Presenter) ShowStartup() error {
	if err := p.dev.Clear(); err != nil {
		return err
	}
	return p.writeRow(0, "Weather Logger")
}

// Refresh renders the per-cycle layout on rows 1..3:
//
//	row 1: Tue Nov 14  10:00:00
//	row 2: H: 45.2% Temp: 72.3F
//	row 3: Press: 101.3 kPa
func (p *Presenter) Refresh(s sample.Sample) error {
	t := s.Time
	dateLine := fmt.Sprintf("%s %s %02d  %02d:%02d:%02d",
		t.Weekday().String()[:3], t.Month().String()[:3], t.Day(),
		t.Hour(), t.Minute(), t.Second())
	if err := p.writeRow(1, dateLine); err != nil {
		return err
	}

	if p.manual {
		if err := p.writeRow(2, p.metricLine(s)); err != nil {
			return err
		}
		return p.writeRow(3, "")
	}

	if err := p.writeRow(2, fmt.Sprintf("H: %.1f%% Temp: %.1fF", s.HumidityPct, s.TemperatureF)); err != nil {
		return err
	}
	return p.writeRow(3, fmt.Sprintf("Press: %.1f kPa", s.PressureKPa))
}

func (p *Presenter) metricLine(s sample.Sample) string {
	switch p.mode {
	case ModeTemperature:
		return fmt.Sprintf("Temp: %.1f F", s.TemperatureF)
	case ModePressure:
		return fmt.Sprintf("Press: %.1f kPa", s.PressureKPa)
	default:
		return fmt.Sprintf("Hum: %.1f %%", s.HumidityPct)
	}
}

// ShowAverages renders the window-average snapshot on rows 1..3. The
// caller holds it on screen for the dwell period before resuming Refresh.
func (p *Presenter) ShowAverages(avg average.Snapshot) error {
	if err := p.writeRow(1, fmt.Sprintf("Avg Hum: %.1f%%", avg.HumidityPct)); err != nil {
		return err
	}
	if err := p.writeRow(2, fmt.Sprintf("Avg Temp: %.1fF", avg.TemperatureF)); err != nil {
		return err
	}
	return p.writeRow(3, fmt.Sprintf("Avg Press: %.1f kPa", avg.PressureKPa))
}

// ShowFatal clears the screen and leaves the error message up; the
// process halts right after.
func (p *Presenter) ShowFatal(msg string) error {
	if err := p.dev.Clear(); err != nil {
		return err
	}
	if err := p.writeRow(0, "FATAL ERROR"); err != nil {
		return err
	}
	// wrap the message over the remaining rows
	for row := 1; row < Rows && msg != ""; row++ {
		line := msg
		if len(line) > Cols {
			line = line[:Cols]
		}
		msg = msg[len(line):]
		if err := p.writeRow(row, line); err != nil {
			return err
		}
	}
	return nil
}

// writeRow prints text padded to the full row width so stale characters
// from a previous, longer line never survive.
func (p *Presenter) writeRow(row int, text string) error {
	if len(text) > Cols {
		text = text[:Cols]
	}
	if err := p.dev.SetCursor(0, row); err != nil {
		return err
	}
	return p.dev.Print(fmt.Sprintf("%-*s", Cols, text))
}
