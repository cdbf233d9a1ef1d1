// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package panorama

import "fmt"

// Settings describe the background image of one surface.
type Settings struct {
	ImageURL            string  `json:"image_url,omitempty"`
	ImageWidth          float64 `json:"image_width"`
	ImageHeight         float64 `json:"image_height"`
	VerticalResizeRatio float64 `json:"vertical_resize_ratio"`
	Ratio               float64 `json:"ratio"`
}

// DefaultSettings are applied under any global or per-surface settings.
var DefaultSettings = Settings{
	ImageWidth:          3000,
	ImageHeight:         1000,
	VerticalResizeRatio: 1.2,
	Ratio:               1,
}

// Merge returns s with every non-zero field of o applied on top.
func (s Settings) Merge(o Settings) Settings {
	if o.ImageURL != "" {
		s.ImageURL = o.ImageURL
	}
	if o.ImageWidth != 0 {
		s.ImageWidth = o.ImageWidth
	}
	if o.ImageHeight != 0 {
		s.ImageHeight = o.ImageHeight
	}
	if o.VerticalResizeRatio != 0 {
		s.VerticalResizeRatio = o.VerticalResizeRatio
	}
	if o.Ratio != 0 {
		s.Ratio = o.Ratio
	}
	return s
}

func (s Settings) validate() error {
	if s.ImageWidth <= 0 || s.ImageHeight <= 0 {
		return fmt.Errorf("%w: image size %vx%v", ErrInvalidSizing, s.ImageWidth, s.ImageHeight)
	}
	if s.VerticalResizeRatio <= 0 {
		return fmt.Errorf("%w: vertical resize ratio %v", ErrInvalidSizing, s.VerticalResizeRatio)
	}
	if s.Ratio <= 0 {
		return fmt.Errorf("%w: ratio %v", ErrInvalidSizing, s.Ratio)
	}
	return nil
}

// Sizing is the static scaled size of a surface's background.
type Sizing struct {
	ResizeWidth  float64 `json:"resize_width"`
	ResizeHeight float64 `json:"resize_height"`
	Ratio        float64 `json:"ratio"`
}

// ComputeSizing scales the image so its height covers
// viewportHeight*VerticalResizeRatio*Ratio, keeping the aspect ratio.
func ComputeSizing(viewportHeight float64, s Settings) Sizing {
	resizeHeight := viewportHeight * s.VerticalResizeRatio * s.Ratio
	resizeWidth := s.ImageWidth * resizeHeight / s.ImageHeight * s.Ratio
	return Sizing{
		ResizeWidth:  resizeWidth,
		ResizeHeight: resizeHeight,
		Ratio:        s.Ratio,
	}
}

// BackgroundSize is the rendered size of the background image.
func (z Sizing) BackgroundSize() (w, h float64) {
	return z.ResizeWidth, z.ResizeHeight / z.Ratio
}

func (z Sizing) validate() error {
	if z.ResizeWidth <= 0 || z.ResizeHeight <= 0 {
		return fmt.Errorf("%w: resize %vx%v", ErrInvalidSizing, z.ResizeWidth, z.ResizeHeight)
	}
	if z.Ratio <= 0 {
		return fmt.Errorf("%w: ratio %v", ErrInvalidSizing, z.Ratio)
	}
	return nil
}
