package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/weather_logger/internal/average"
	"github.com/relabs-tech/weather_logger/internal/config"
	"github.com/relabs-tech/weather_logger/internal/sample"
)

// RunConsoleMQTT subscribes to the sample and average topics and prints
// each message as a one-line reading.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required for the console")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to samples
	sampleToken := client.Subscribe(cfg.TopicSample, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s sample.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: sample unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[SAMPLE] %s  H=%5.1f%%  T=%5.1fF  P=%6.1fkPa\n",
			s.Time.Format(time.RFC3339), s.HumidityPct, s.TemperatureF, s.PressureKPa,
		)
	})
	sampleToken.Wait()
	if sampleToken.Error() != nil {
		return sampleToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSample)

	// Subscribe to window averages
	avgToken := client.Subscribe(cfg.TopicAverage, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var avg average.Snapshot
		if err := json.Unmarshal(msg.Payload(), &avg); err != nil {
			log.Printf("console: average unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[AVG %2d] H=%5.1f%%  T=%5.1fF  P=%6.1fkPa\n",
			avg.Count, avg.HumidityPct, avg.TemperatureF, avg.PressureKPa,
		)
	})
	avgToken.Wait()
	if avgToken.Error() != nil {
		return avgToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAverage)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
