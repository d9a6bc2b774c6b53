package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/weather_logger/internal/average"
	"github.com/relabs-tech/weather_logger/internal/button"
	"github.com/relabs-tech/weather_logger/internal/config"
	"github.com/relabs-tech/weather_logger/internal/display"
	"github.com/relabs-tech/weather_logger/internal/logfile"
	"github.com/relabs-tech/weather_logger/internal/rtc"
	"github.com/relabs-tech/weather_logger/internal/sample"
	"github.com/relabs-tech/weather_logger/internal/sensors"
)

// RunLogger brings the device up and runs the scheduler until a fatal
// error. Every startup failure is rendered on the display before the
// error propagates; there is no degraded mode.
func RunLogger() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Display first so every later failure can be shown on it
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	oledDev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("logger: display initialized")

	presenter := display.NewPresenter(display.NewOLED(oledDev), cfg.ButtonPin != "")
	if err := presenter.ShowStartup(); err != nil {
		log.Printf("logger: error showing startup banner: %v", err)
	}

	fatal := func(err error) error {
		log.Printf("logger: fatal: %v", err)
		if derr := presenter.ShowFatal(err.Error()); derr != nil {
			log.Printf("logger: error showing fatal message: %v", derr)
		}
		return err
	}

	// Startup checks: storage, sensors, clock. All fatal on failure.
	rec, err := logfile.Open(cfg.LogDir, uint32(cfg.SyncIntervalMS))
	if err != nil {
		return fatal(err)
	}
	defer rec.Close()
	log.Printf("logger: writing %s", rec.Name())

	if err := rec.WriteHeader(); err != nil {
		return fatal(err)
	}

	if err := sensors.Init(); err != nil {
		return fatal(fmt.Errorf("sensor init: %w", err))
	}

	clock, err := rtc.New(cfg.GPSSerialPort, cfg.GPSBaudRate)
	if err != nil {
		return fatal(err)
	}

	var input Input
	if cfg.ButtonPin != "" {
		btn, err := button.Open(cfg.ButtonPin)
		if err != nil {
			return fatal(fmt.Errorf("mode button: %w", err))
		}
		input = btn
	}

	publish, publishAvg := connectTelemetry(cfg)

	start := time.Now()
	loop := &Loop{
		Sensors:     sensors.HW{},
		Rec:         rec,
		Disp:        presenter,
		Btn:         input,
		Avg:         average.New(cfg.AverageWindow),
		Clock:       func() uint32 { return uint32(time.Since(start).Milliseconds()) },
		Wall:        clock.Now,
		Sleep:       time.Sleep,
		Publish:     publish,
		PublishAvg:  publishAvg,
		LogInterval: uint32(cfg.LogIntervalMS),
		AvgDwell:    time.Duration(cfg.AverageDwellMS) * time.Millisecond,
		Debounce:    time.Duration(cfg.DebounceMS) * time.Millisecond,
	}

	log.Printf("logger: sampling every %d ms, flushing every %d ms, averaging over %d samples",
		cfg.LogIntervalMS, cfg.SyncIntervalMS, cfg.AverageWindow)

	if err := loop.Run(); err != nil {
		return fatal(err)
	}
	return nil
}

// connectTelemetry connects to the MQTT broker when one is configured and
// returns the publish hooks. Telemetry is best-effort: a connect or
// publish failure is logged, never fatal — the CSV file is the record of
// truth.
func connectTelemetry(cfg *config.Config) (func(sample.Sample), func(average.Snapshot)) {
	if cfg.MQTTBroker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDLogger)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Printf("logger: MQTT connect error: %v (telemetry disabled)", token.Error())
		return nil, nil
	}
	log.Printf("logger: connected to MQTT broker at %s", cfg.MQTTBroker)

	publish := func(s sample.Sample) {
		payload, err := json.Marshal(s)
		if err != nil {
			log.Printf("logger: sample marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicSample, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("logger: MQTT publish error (sample): %v", token.Error())
		}
	}

	publishAvg := func(avg average.Snapshot) {
		payload, err := json.Marshal(avg)
		if err != nil {
			log.Printf("logger: average marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicAverage, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("logger: MQTT publish error (average): %v", token.Error())
		}
	}

	return publish, publishAvg
}
