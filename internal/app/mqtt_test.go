package app

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// recordingClient implements only Publish; any other call panics.
type recordingClient struct {
	mqtt.Client
	msgs []published
	err  error
}

func (c *recordingClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.msgs = append(c.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return doneToken{err: c.err}
}

func TestPublisherRetention(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		make     func(mqtt.Client) func([]byte) error
		topic    string
		retained bool
	}{
		{"readings", func(c mqtt.Client) func([]byte) error { return readingsPublisher(c, cfg) }, cfg.TopicOrientation, false},
		{"offsets", func(c mqtt.Client) func([]byte) error { return offsetsPublisher(c, cfg) }, cfg.TopicOffsets, true},
		{"control", func(c mqtt.Client) func([]byte) error { return controlPublisher(c, cfg) }, cfg.TopicControl, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &recordingClient{}
			require.NoError(t, tt.make(client)([]byte(`{}`)))

			require.Len(t, client.msgs, 1)
			assert.Equal(t, published{topic: tt.topic, retained: tt.retained, payload: []byte(`{}`)}, client.msgs[0])
		})
	}
}

func TestPublisherReturnsTokenError(t *testing.T) {
	client := &recordingClient{err: errors.New("not connected")}
	err := publisher(client, "panorama/offsets", true)([]byte(`{}`))
	assert.ErrorContains(t, err, "MQTT publish panorama/offsets: not connected")
}
