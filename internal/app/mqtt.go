// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/panorama/internal/config"
)

// connectMQTT connects to the broker and blocks until the connection is up.
func connectMQTT(broker, clientID, component string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s", component, broker)
	return client, nil
}

// subscribe subscribes handler to topic and waits for the broker to confirm.
func subscribe(client mqtt.Client, topic, component string, handler func(payload []byte)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	log.Printf("%s: subscribed to %s", component, topic)
	return nil
}

// publisher returns a function publishing QoS 0 messages to topic.
func publisher(client mqtt.Client, topic string, retained bool) func([]byte) error {
	return func(payload []byte) error {
		if token := client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
			return fmt.Errorf("MQTT publish %s: %w", topic, token.Error())
		}
		return nil
	}
}

// readingsPublisher publishes live readings. They are not retained, so a
// restarted tracker never takes a stale reading as its origin.
func readingsPublisher(client mqtt.Client, cfg *config.Config) func([]byte) error {
	return publisher(client, cfg.TopicOrientation, false)
}

// offsetsPublisher publishes retained snapshots for late subscribers.
func offsetsPublisher(client mqtt.Client, cfg *config.Config) func([]byte) error {
	return publisher(client, cfg.TopicOffsets, true)
}

// controlPublisher publishes control commands, never retained.
func controlPublisher(client mqtt.Client, cfg *config.Config) func([]byte) error {
	return publisher(client, cfg.TopicControl, false)
}

// waitForSignal blocks until Ctrl+C or SIGTERM.
func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
