package button

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Button is a polled GPIO input, active low with the internal pull-up.
// Debouncing is the scheduler's job.
type Button struct {
	pin gpio.PinIO
}

// Open looks the pin up by name (e.g. "GPIO17") and configures it as a
// pulled-up input.
func Open(name string) (*Button, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure pin %s: %w", name, err)
	}
	return &Button{pin: pin}, nil
}

// Pressed reports whether the button is currently held down.
func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}
