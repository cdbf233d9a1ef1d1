package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/panorama/internal/panorama"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panorama_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t,
		"# comment",
		"",
		"MQTT_BROKER = tcp://broker:1883",
		"TOPIC_OFFSETS=pano/out",
		"SOURCE=serial",
		"SERIAL_PORT=/dev/ttyUSB0",
		"SERIAL_BAUD_RATE=115200",
		"SAMPLE_INTERVAL=20",
		"VIEWPORT_HEIGHT=900",
		"IMAGE_URL=world.jpg",
		"IMAGE_WIDTH=4000",
		"SURFACE=sky",
		"SURFACE=hills, hills.png, , 2000, , 1.5",
		"WEB_SERVER_PORT=9090",
	)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, "pano/out", cfg.TopicOffsets)
	assert.Equal(t, "panorama/orientation", cfg.TopicOrientation, "default kept")
	assert.Equal(t, SourceSerial, cfg.Source)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 115200, cfg.SerialBaudRate)
	assert.Equal(t, 20, cfg.SampleInterval)
	assert.Equal(t, 250, cfg.DisplayUpdateInterval)
	assert.Equal(t, 900.0, cfg.ViewportHeight)
	assert.Equal(t, 9090, cfg.WebServerPort)

	require.Len(t, cfg.Surfaces, 2)
	assert.Equal(t, Surface{Name: "sky"}, cfg.Surfaces[0])
	assert.Equal(t, Surface{
		Name:     "hills",
		Settings: panorama.Settings{ImageURL: "hills.png", ImageHeight: 2000, Ratio: 1.5},
	}, cfg.Surfaces[1])

	assert.Equal(t, panorama.Settings{
		ImageURL:            "world.jpg",
		ImageWidth:          4000,
		ImageHeight:         1000,
		VerticalResizeRatio: 1.2,
		Ratio:               1,
	}, cfg.SurfaceSettings(cfg.Surfaces[0]))
	assert.Equal(t, panorama.Settings{
		ImageURL:            "hills.png",
		ImageWidth:          4000,
		ImageHeight:         2000,
		VerticalResizeRatio: 1.2,
		Ratio:               1.5,
	}, cfg.SurfaceSettings(cfg.Surfaces[1]))
}

func TestLoadErrors(t *testing.T) {
	base := []string{"MQTT_BROKER=tcp://b:1883", "VIEWPORT_HEIGHT=1000", "SURFACE=main"}

	tests := []struct {
		name    string
		lines   []string
		wantErr string
	}{
		{"missing broker", []string{"VIEWPORT_HEIGHT=1000", "SURFACE=main"}, "MQTT_BROKER is required"},
		{"missing viewport", []string{"MQTT_BROKER=x", "SURFACE=main"}, "VIEWPORT_HEIGHT is required"},
		{"missing surface", []string{"MQTT_BROKER=x", "VIEWPORT_HEIGHT=1000"}, "at least one SURFACE"},
		{"not key value", append(base, "JUSTTEXT"), "invalid config line 4"},
		{"unknown key", append(base, "NOPE=1"), "unknown config key"},
		{"bad source", append(base, "SOURCE=gps"), "SOURCE must be one of"},
		{"bad accel range", append(base, "IMU_ACCEL_RANGE=4"), "IMU_ACCEL_RANGE must be 0-3"},
		{"bad interval", append(base, "SAMPLE_INTERVAL=0"), "SAMPLE_INTERVAL must be positive"},
		{"bad viewport", []string{"MQTT_BROKER=x", "VIEWPORT_HEIGHT=-1", "SURFACE=main"}, "VIEWPORT_HEIGHT must be positive"},
		{"bad ratio", append(base, "RATIO=abc"), "invalid RATIO"},
		{"bad port", append(base, "WEB_SERVER_PORT=70000"), "WEB_SERVER_PORT must be 1-65535"},
		{"duplicate surface", append(base, "SURFACE=main"), `duplicate SURFACE "main"`},
		{"surface without name", append(base, "SURFACE=,x.png"), "SURFACE needs a name"},
		{"surface bad ratio", append(base, "SURFACE=b,,,,,0"), "SURFACE b ratio must be positive"},
		{"surface too many fields", append(base, "SURFACE=b,,1,1,1,1,1"), "at most 6"},
		{"imu without device", append(base, "SOURCE=imu"), "IMU_SPI_DEVICE and IMU_CS_PIN are required"},
		{"serial without port", append(base, "SOURCE=serial"), "SERIAL_PORT is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.lines...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGlobal(t *testing.T) {
	path := writeConfig(t, "MQTT_BROKER=tcp://g:1883", "VIEWPORT_HEIGHT=700", "SURFACE=main")
	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, "tcp://g:1883", Get().MQTTBroker)

	// later calls do not reload
	require.NoError(t, InitGlobal(filepath.Join(t.TempDir(), "other.txt")))
	assert.Equal(t, 700.0, Get().ViewportHeight)
}
