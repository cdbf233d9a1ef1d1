// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/relabs-tech/panorama/internal/config"
	"github.com/relabs-tech/panorama/internal/orientation"
	"github.com/relabs-tech/panorama/internal/panorama"
)

// Control actions accepted on the control topic and over the websocket.
const (
	ActionReset  = "reset"
	ActionPause  = "pause"
	ActionResume = "resume"
)

var errUnknownAction = errors.New("unknown action")

// ControlCommand changes the tracking session.
type ControlCommand struct {
	Action  string `json:"action"`
	Surface string `json:"surface,omitempty"`
}

func (c ControlCommand) validate() error {
	switch c.Action {
	case ActionReset:
		return nil
	case ActionPause, ActionResume:
		if c.Surface == "" {
			return fmt.Errorf("%s needs a surface", c.Action)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, c.Action)
	}
}

// trackerService serializes access to one panorama session. MQTT callbacks
// arrive on their own goroutines, the tracker itself has no locking.
type trackerService struct {
	mu      sync.Mutex
	tracker *panorama.Tracker
}

func newTrackerService(cfg *config.Config) (*trackerService, error) {
	tr := panorama.NewTracker(cfg.ViewportHeight)
	for _, s := range cfg.Surfaces {
		sf, err := tr.Register(s.Name, cfg.SurfaceSettings(s))
		if err != nil {
			return nil, fmt.Errorf("register surface: %w", err)
		}
		w, h := sf.BackgroundSize()
		log.Printf("tracker: surface %q background %.0fx%.0f px (resize height %.0f)", sf.Name, w, h, sf.ResizeHeight)
	}
	log.Printf("tracker: session %s, viewport %.0f px, vertical floor %.1f px",
		tr.ID(), tr.ViewportHeight(), tr.VerticalFloor())

	return &trackerService{tracker: tr}, nil
}

// handleReading feeds one reading payload to the tracker. It returns the
// snapshot payload to publish, or nil when the sample only set the origin.
func (s *trackerService) handleReading(payload []byte) ([]byte, error) {
	var r orientation.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("reading unmarshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wasTracking := s.tracker.State() == panorama.Tracking
	if err := s.tracker.OnOrientation(r); err != nil {
		return nil, err
	}
	if !wasTracking {
		origin, _ := s.tracker.Origin()
		log.Printf("tracker: origin set Y=%.3f P=%.3f R=%.3f rad", origin.Yaw, origin.Pitch, origin.Roll)
		return nil, nil
	}

	return json.Marshal(s.tracker.Snapshot())
}

// handleControl applies a control payload and returns the snapshot to publish.
func (s *trackerService) handleControl(payload []byte) ([]byte, error) {
	var cmd ControlCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, fmt.Errorf("control unmarshal: %w", err)
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Action {
	case ActionReset:
		s.tracker.Reset()
		log.Println("tracker: origin cleared, waiting for next sample")
	case ActionPause, ActionResume:
		if err := s.tracker.SetPaused(cmd.Surface, cmd.Action == ActionPause); err != nil {
			return nil, err
		}
		log.Printf("tracker: surface %q %sd", cmd.Surface, cmd.Action)
	}

	return json.Marshal(s.tracker.Snapshot())
}

// RunTracker subscribes to readings and control commands and publishes
// surface offsets after every tracked sample.
func RunTracker() error {
	cfg := config.Get()

	svc, err := newTrackerService(cfg)
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDTracker, "tracker")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	publish := offsetsPublisher(client, cfg)

	if err := subscribe(client, cfg.TopicOrientation, "tracker", func(payload []byte) {
		out, err := svc.handleReading(payload)
		if err != nil {
			log.Printf("tracker: sample ignored: %v", err)
			return
		}
		if out == nil {
			return
		}
		if err := publish(out); err != nil {
			log.Printf("tracker: %v", err)
		}
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicControl, "tracker", func(payload []byte) {
		out, err := svc.handleControl(payload)
		if err != nil {
			log.Printf("tracker: control rejected: %v", err)
			return
		}
		if err := publish(out); err != nil {
			log.Printf("tracker: %v", err)
		}
	}); err != nil {
		return err
	}

	waitForSignal()
	log.Println("tracker: shutting down")
	return nil
}
