// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package panorama

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/relabs-tech/panorama/internal/orientation"
)

var (
	ErrInvalidSizing    = errors.New("invalid surface sizing")
	ErrDuplicateSurface = errors.New("surface already registered")
	ErrUnknownSurface   = errors.New("unknown surface")
)

// State of a tracking session.
type State int

const (
	// AwaitingOrigin: the next sample becomes the reference orientation.
	AwaitingOrigin State = iota
	// Tracking: samples are measured against the stored origin.
	Tracking
)

func (s State) String() string {
	switch s {
	case AwaitingOrigin:
		return "awaiting_origin"
	case Tracking:
		return "tracking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tracker is one panorama session: it owns the origin orientation, the
// surface registry and the smallest registered resize height.
//
// Tracker does no locking. Callers must serialize OnOrientation with every
// other method.
type Tracker struct {
	id             uuid.UUID
	viewportHeight float64

	minResizeHeight float64
	haveMin         bool

	state   State
	origin  orientation.Euler
	current orientation.Euler

	surfaces []*Surface
}

// NewTracker starts a session for a viewport of the given height in pixels.
func NewTracker(viewportHeight float64) *Tracker {
	return &Tracker{
		id:             uuid.New(),
		viewportHeight: viewportHeight,
		state:          AwaitingOrigin,
	}
}

func (t *Tracker) ID() uuid.UUID           { return t.id }
func (t *Tracker) State() State            { return t.state }
func (t *Tracker) ViewportHeight() float64 { return t.viewportHeight }

// Origin returns the reference orientation, if one has been captured.
func (t *Tracker) Origin() (orientation.Euler, bool) {
	return t.origin, t.state == Tracking
}

// Current returns the last normalized orientation measured against the origin.
func (t *Tracker) Current() orientation.Euler { return t.current }

// MinResizeHeight is the smallest resize height over all registered surfaces.
func (t *Tracker) MinResizeHeight() float64 { return t.minResizeHeight }

// Register computes the sizing of a surface from its settings and adds it.
// Zero fields of s fall back to DefaultSettings.
func (t *Tracker) Register(name string, s Settings) (*Surface, error) {
	s = DefaultSettings.Merge(s)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("surface %q: %w", name, err)
	}
	sf, err := t.AddSurface(name, ComputeSizing(t.viewportHeight, s))
	if err != nil {
		return nil, err
	}
	sf.ImageURL = s.ImageURL
	return sf, nil
}

// AddSurface adds a surface whose sizing was computed elsewhere.
func (t *Tracker) AddSurface(name string, z Sizing) (*Surface, error) {
	if err := z.validate(); err != nil {
		return nil, fmt.Errorf("surface %q: %w", name, err)
	}
	if _, ok := t.Surface(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSurface, name)
	}

	if !t.haveMin || z.ResizeHeight < t.minResizeHeight {
		t.minResizeHeight = z.ResizeHeight
		t.haveMin = true
	}

	sf := &Surface{Name: name, Sizing: z}
	t.surfaces = append(t.surfaces, sf)
	return sf, nil
}

// Surface looks a surface up by name.
func (t *Tracker) Surface(name string) (*Surface, bool) {
	for _, sf := range t.surfaces {
		if sf.Name == name {
			return sf, true
		}
	}
	return nil, false
}

// Surfaces returns the registered surfaces in registration order.
func (t *Tracker) Surfaces() []*Surface {
	out := make([]*Surface, len(t.surfaces))
	copy(out, t.surfaces)
	return out
}

// SetPaused pauses or resumes a surface by name.
func (t *Tracker) SetPaused(name string, paused bool) error {
	sf, ok := t.Surface(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSurface, name)
	}
	if paused {
		sf.Pause()
	} else {
		sf.Resume()
	}
	return nil
}

// Reset drops the origin; the next sample captures a new one. Surface
// offsets keep their last written values.
func (t *Tracker) Reset() {
	t.state = AwaitingOrigin
	t.origin = orientation.Euler{}
	t.current = orientation.Euler{}
}

// VerticalFloor is the lowest allowed vertical offset, never above 0.
func (t *Tracker) VerticalFloor() float64 {
	return math.Min(0, (t.viewportHeight-t.minResizeHeight)/2)
}

// OnOrientation processes one sample. The first sample after construction
// or Reset only captures the origin. Invalid samples are rejected and leave
// the session untouched.
func (t *Tracker) OnOrientation(r orientation.Reading) error {
	if err := r.Validate(); err != nil {
		return err
	}

	cam := orientation.Normalize(orientation.FromReading(r))

	if t.state == AwaitingOrigin {
		t.origin = cam
		t.state = Tracking
		return nil
	}

	t.current = cam
	t.move(MovedX(t.origin.Yaw, cam.Yaw), MovedY(cam.Pitch))
	return nil
}

func (t *Tracker) move(movedX, movedY float64) {
	floor := t.VerticalFloor()
	for _, sf := range t.surfaces {
		posX := round(sf.ResizeWidth * movedX)
		posY := ClampY(round(sf.ResizeHeight/sf.Ratio*movedY), floor)

		if sf.paused {
			continue
		}
		sf.offset = Offset{X: posX, Y: posY}
	}
}

// MovedX is the horizontal displacement from originYaw to currentYaw in
// full turns. The sign split keeps it continuous across the ±π seam.
func MovedX(originYaw, currentYaw float64) float64 {
	d := (currentYaw - originYaw) / math.Pi / 2
	if originYaw > 0 {
		if currentYaw > 0 {
			return d
		}
		return 2 + d
	}
	if currentYaw > 0 {
		return d - 2
	}
	return d
}

// MovedY is the vertical displacement in half turns. Both branches move
// against the sign of a positive pitch: -pitch/π when pitch >= 0 and
// |pitch|/π when pitch < 0.
func MovedY(pitch float64) float64 {
	if pitch < 0 {
		return math.Abs(pitch / math.Pi)
	}
	return 0 - math.Abs(pitch/math.Pi)
}

// ClampY bounds posY to [floor, 0].
func ClampY(posY, floor float64) float64 {
	if posY > 0 {
		posY = 0
	}
	if posY < floor {
		posY = floor
	}
	return posY
}

// round matches Math.round in browsers: halves go toward +Inf.
// Floor(x+0.5) is off for 0.49999999999999994, where the sum rounds up to 1.
func round(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}
