package app

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/relabs-tech/panorama/internal/config"
	"github.com/relabs-tech/panorama/internal/orientation"
	"github.com/relabs-tech/panorama/internal/panorama"
)

// formatSnapshot renders one console line per snapshot.
func formatSnapshot(snap panorama.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[PANO] YAW=%7.2f PITCH=%6.2f ROLL=%7.2f",
		orientation.RadToDeg(snap.Camera.Yaw),
		orientation.RadToDeg(snap.Camera.Pitch),
		orientation.RadToDeg(snap.Camera.Roll),
	)
	for _, s := range snap.Surfaces {
		status := ""
		if s.Paused {
			status = " (paused)"
		}
		fmt.Fprintf(&b, " | %s x=%.0f y=%.1f%s", s.Name, s.X, s.Y, status)
	}
	return b.String()
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicOffsets, "console", func(payload []byte) {
		var snap panorama.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			log.Printf("console: offsets unmarshal error: %v", err)
			return
		}
		fmt.Println(formatSnapshot(snap))
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicOrientation, "console", func(payload []byte) {
		var r orientation.Reading
		if err := json.Unmarshal(payload, &r); err != nil {
			log.Printf("console: reading unmarshal error: %v", err)
			return
		}
		fmt.Printf("[READ] ALPHA=%7.2f BETA=%7.2f GAMMA=%7.2f\n", r.Alpha, r.Beta, r.Gamma)
	}); err != nil {
		return err
	}

	waitForSignal()

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
