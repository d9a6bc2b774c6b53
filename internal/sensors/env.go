package sensors

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/weather_logger/internal/config"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

var (
	bmeDev     *bmxx80.Dev
	bmpDev     *bmxx80.Dev
	envOnce    sync.Once
	envInitErr error
)

// initEnv initializes both sensors once
func initEnv() {
	envOnce.Do(func() {
		cfg := config.Get()

		// Initialize periph host
		if _, err := host.Init(); err != nil {
			envInitErr = fmt.Errorf("periph host init: %w", err)
			return
		}

		// BME280: humidity + temperature
		busBME, err := spireg.Open(cfg.BMESPIDevice)
		if err != nil {
			envInitErr = fmt.Errorf("BME280 SPI open: %w", err)
			return
		}

		bmeDev, err = bmxx80.NewSPI(busBME, &bmxx80.DefaultOpts)
		if err != nil {
			envInitErr = fmt.Errorf("BME280 init: %w", err)
			return
		}

		// BMP280: pressure
		busBMP, err := spireg.Open(cfg.BMPSPIDevice)
		if err != nil {
			envInitErr = fmt.Errorf("BMP280 SPI open: %w", err)
			return
		}

		bmpDev, err = bmxx80.NewSPI(busBMP, &bmxx80.DefaultOpts)
		if err != nil {
			envInitErr = fmt.Errorf("BMP280 init: %w", err)
			return
		}
	})
}

// Init forces sensor bring-up so startup can fail fast instead of on the
// first log cycle.
func Init() error {
	initEnv()
	return envInitErr
}

// HW reads the physical sensors. It satisfies the scheduler's
// SensorSource contract.
type HW struct{}

// ReadEnv reads the BME280 (humidity %RH + temperature °F).
func (HW) ReadEnv() (humidityPct, temperatureF float64, err error) {
	initEnv()
	if envInitErr != nil {
		return 0, 0, envInitErr
	}

	var e physic.Env
	if err := bmeDev.Sense(&e); err != nil {
		return 0, 0, fmt.Errorf("BME280 sense: %w", err)
	}

	humidityPct = float64(e.Humidity) / float64(physic.PercentRH)
	temperatureF = e.Temperature.Celsius()*9.0/5.0 + 32.0
	return humidityPct, temperatureF, nil
}

// ReadPressure reads the BMP280 (pressure kPa).
func (HW) ReadPressure() (pressureKPa float64, err error) {
	initEnv()
	if envInitErr != nil {
		return 0, envInitErr
	}

	var e physic.Env
	if err := bmpDev.Sense(&e); err != nil {
		return 0, fmt.Errorf("BMP280 sense: %w", err)
	}

	return float64(e.Pressure) / float64(physic.KiloPascal), nil
}
