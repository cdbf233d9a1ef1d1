// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/panorama/internal/config"
	"github.com/relabs-tech/panorama/internal/orientation"
)

// newSource builds the orientation source selected by SOURCE. The returned
// closer is nil for sources holding no resources.
func newSource(cfg *config.Config) (orientation.Source, io.Closer, error) {
	switch cfg.Source {
	case config.SourceMock:
		log.Println("producer: using mock orientation source")
		return orientation.NewMockSource(), nil, nil
	case config.SourceIMU:
		log.Printf("producer: using MPU9250 on %s (CS %s)", cfg.IMUSPIDevice, cfg.IMUCSPin)
		src, err := orientation.NewIMUSource(cfg.IMUSPIDevice, cfg.IMUCSPin, cfg.IMUAccelRange)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	case config.SourceSerial:
		src, err := orientation.NewSerialSource(cfg.SerialPort, uint(cfg.SerialBaudRate))
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// RunProducer reads the configured orientation source and publishes every
// reading as JSON. Polled sources are sampled every SAMPLE_INTERVAL; the
// serial stream is forwarded as fast as sentences arrive.
func RunProducer() error {
	cfg := config.Get()

	src, closer, err := newSource(cfg)
	if err != nil {
		return fmt.Errorf("orientation source: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, "producer")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	publish := readingsPublisher(client, cfg)
	log.Println("producer: starting publish loop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if cfg.Source == config.SourceSerial {
		return forwardStream(src, publish, sigCh)
	}

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Println("producer: shutting down")
			return nil
		case <-ticker.C:
			if _, err := publishNext(src, publish); err != nil {
				log.Printf("producer: %v", err)
			}
		}
	}
}

// forwardStream publishes readings from a blocking stream until it fails
// or a signal arrives.
func forwardStream(src orientation.Source, publish func([]byte) error, stop <-chan os.Signal) error {
	for {
		select {
		case <-stop:
			log.Println("producer: shutting down")
			return nil
		default:
		}

		r, err := src.Next()
		if err != nil {
			return fmt.Errorf("orientation stream: %w", err)
		}
		if err := publishReading(r, publish); err != nil {
			log.Printf("producer: %v", err)
		}
	}
}

// publishNext reads one reading from a polled source and publishes it.
func publishNext(src orientation.Source, publish func([]byte) error) (orientation.Reading, error) {
	r, err := src.Next()
	if err != nil {
		return orientation.Reading{}, fmt.Errorf("source read: %w", err)
	}
	return r, publishReading(r, publish)
}

func publishReading(r orientation.Reading, publish func([]byte) error) error {
	if err := r.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return publish(payload)
}
