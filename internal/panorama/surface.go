// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package panorama

import "strconv"

// Offset is a background position in pixels. X is always a whole number;
// Y can carry a half pixel when it is clamped to the vertical floor.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface is one tracked background. The tracker writes its offset on every
// sample unless the surface is paused.
type Surface struct {
	Name     string
	ImageURL string
	Sizing

	offset Offset
	paused bool
}

func (s *Surface) Offset() Offset { return s.offset }

func (s *Surface) Pause()       { s.paused = true }
func (s *Surface) Resume()      { s.paused = false }
func (s *Surface) Paused() bool { return s.paused }

// Style is what a renderer applies to the surface, in CSS length syntax.
type Style struct {
	BackgroundPositionX string `json:"background_position_x"`
	BackgroundPositionY string `json:"background_position_y"`
	BackgroundSize      string `json:"background_size"`
}

func (s *Surface) Style() Style {
	w, h := s.BackgroundSize()
	return Style{
		BackgroundPositionX: px(s.offset.X),
		BackgroundPositionY: px(s.offset.Y),
		BackgroundSize:      px(w) + " " + px(h),
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
