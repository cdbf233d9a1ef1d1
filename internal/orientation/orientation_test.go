package orientation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/panorama/internal/imu"
)

func TestReadingValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Reading
		wantErr string
	}{
		{"finite", Reading{Alpha: 10, Beta: -5, Gamma: 0}, ""},
		{"nan alpha", Reading{Alpha: math.NaN()}, "alpha"},
		{"inf beta", Reading{Beta: math.Inf(1)}, "beta"},
		{"neg inf gamma", Reading{Gamma: math.Inf(-1)}, "gamma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var inv *InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.wantErr, inv.Field)
		})
	}
}

func TestReadingFromAccel(t *testing.T) {
	// Lying flat: gravity on +z only.
	r := ReadingFromAccel(0, 0, 16384)
	assert.Equal(t, Reading{}, r)

	// Rolled 90° onto its side.
	r = ReadingFromAccel(0, 16384, 0)
	assert.InDelta(t, 90, r.Gamma, 1e-9)
	assert.InDelta(t, 0, r.Beta, 1e-9)

	// Nose down.
	r = ReadingFromRaw(imu.Raw{Ax: -16384})
	assert.InDelta(t, 90, r.Beta, 1e-9)
	assert.Equal(t, 0.0, r.Alpha)
}

type fakeAccel struct {
	x, y, z int16
	failZ   error
}

func (f *fakeAccel) GetAccelerationX() (int16, error) { return f.x, nil }
func (f *fakeAccel) GetAccelerationY() (int16, error) { return f.y, nil }
func (f *fakeAccel) GetAccelerationZ() (int16, error) { return f.z, f.failZ }

func TestIMUSourceReadsAccelerometer(t *testing.T) {
	src := &imuSource{dev: &fakeAccel{y: 16384}}

	raw, err := src.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, imu.Raw{Ay: 16384}, raw)

	r, err := src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 90, r.Gamma, 1e-9)

	src = &imuSource{dev: &fakeAccel{failZ: errors.New("spi timeout")}}
	_, err = src.Next()
	assert.ErrorContains(t, err, "IMU accel Z: spi timeout")
}

func TestMockSource(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	src := newMockSource(func() time.Time { return now })

	r, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, Reading{Alpha: 0, Beta: 15, Gamma: 0}, r)

	now = start.Add(13 * time.Second)
	r, err = src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 30, r.Alpha, 1e-9) // 390 wraps to 30
	assert.InDelta(t, 15*math.Cos(13*0.7), r.Beta, 1e-12)
	assert.InDelta(t, 20*math.Sin(13), r.Gamma, 1e-12)
}

func TestParseSentence(t *testing.T) {
	r, err := ParseSentence(sentence("IIORI,20.5,-5.25,0"))
	require.NoError(t, err)
	assert.Equal(t, Reading{Alpha: 20.5, Beta: -5.25, Gamma: 0}, r)

	_, err = ParseSentence("$IIORI,20.5,-5.25,0*00")
	assert.Error(t, err, "bad checksum")

	_, err = ParseSentence(sentence("IIORI,abc,1,2"))
	assert.Error(t, err)

	_, err = ParseSentence("$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70")
	assert.ErrorIs(t, err, ErrNotOrientation)
}

func TestStreamSource(t *testing.T) {
	input := strings.Join([]string{
		"",
		"garbage",
		sentence("IIORI,10,5,0"),
		"$IIORI,1,2", // truncated
		"$GPRMC,220516,A,5133.82,N,00042.24,W,173.8,231.8,130694,004.2,W*70",
		sentence("IIORI,20,5,0"),
	}, "\r\n") + "\r\n" + sentence("IIORI,30,-1,2") // no trailing newline

	rc := &closeRecorder{Reader: strings.NewReader(input)}
	src := NewStreamSource(rc)

	var got []Reading
	for {
		r, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, r)
	}

	assert.Equal(t, []Reading{
		{Alpha: 10, Beta: 5, Gamma: 0},
		{Alpha: 20, Beta: 5, Gamma: 0},
		{Alpha: 30, Beta: -1, Gamma: 2},
	}, got)

	require.NoError(t, src.Close())
	assert.True(t, rc.closed)
}

func TestStreamSourceReadError(t *testing.T) {
	boom := errors.New("boom")
	src := NewStreamSource(&closeRecorder{Reader: &failingReader{err: boom}})
	_, err := src.Next()
	assert.ErrorIs(t, err, boom)
}

// sentence frames body with '$' and its checksum.
func sentence(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, cs)
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReadingJSON(t *testing.T) {
	var r Reading
	require.NoError(t, json.Unmarshal([]byte(`{"alpha":10,"beta":-5.5,"gamma":0}`), &r))
	assert.Equal(t, Reading{Alpha: 10, Beta: -5.5, Gamma: 0}, r)

	data, err := json.Marshal(Reading{Alpha: 1, Beta: 2, Gamma: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"alpha":1,"beta":2,"gamma":3}`, string(data))

	err = json.Unmarshal([]byte(`{"alpha":10,"gamma":0}`), &r)
	var inv *InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "beta", inv.Field)

	assert.Error(t, json.Unmarshal([]byte(`{"alpha":"x","beta":1,"gamma":2}`), &r))
}
