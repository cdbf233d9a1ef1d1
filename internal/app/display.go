package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/panorama/internal/config"
	"github.com/relabs-tech/panorama/internal/orientation"
	"github.com/relabs-tech/panorama/internal/panorama"
)

// displayData holds the latest snapshot for the display loop.
type displayData struct {
	mu   sync.RWMutex
	snap panorama.Snapshot
	have bool
}

func (d *displayData) set(payload []byte) {
	var snap panorama.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		log.Printf("display: offsets unmarshal error: %v", err)
		return
	}
	d.mu.Lock()
	d.snap = snap
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) get() (panorama.Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap, d.have
}

// RunDisplay shows the orientation and the first surface offset on an
// SSD1306 OLED on the default I2C bus.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, "display")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribe(client, cfg.TopicOffsets, "display", data.set); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		snap, have := data.get()
		if err := dev.Draw(dev.Bounds(), renderSnapshot(snap, have), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, text string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

func renderSnapshot(snap panorama.Snapshot, have bool) *image1bit.VerticalLSB {
	img, d := newFrame()

	if !have {
		drawLine(d, 0, 26, "Panorama")
		drawLine(d, 0, 39, "Waiting...")
		return img
	}

	drawLine(d, 0, 13, fmt.Sprintf("Y:%6.1f P:%5.1f", orientation.RadToDeg(snap.Camera.Yaw), orientation.RadToDeg(snap.Camera.Pitch)))

	if len(snap.Surfaces) == 0 {
		drawLine(d, 0, 39, "No surfaces")
		return img
	}

	s := snap.Surfaces[0]
	label := s.Name
	if s.Paused {
		label += " (P)"
	}
	drawLine(d, 0, 26, label)
	drawLine(d, 0, 39, fmt.Sprintf("X: %7.0f", s.X))
	drawLine(d, 0, 52, fmt.Sprintf("Y: %7.1f", s.Y))
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, d := newFrame()
	drawLine(d, 20, 26, "Panorama")
	drawLine(d, 10, 43, "Tilt to pan")
	return img
}
