// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"encoding/json"
	"fmt"
	"math"
)

// Reading is a single device orientation sample in degrees.
// Alpha maps to yaw, Beta to pitch and Gamma to roll.
type Reading struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Source is anything that can provide readings over time.
// Current sources: mock generator, MPU9250 accelerometer, NMEA serial stream.
type Source interface {
	Next() (Reading, error)
}

// InvalidInputError reports a reading field that is not a finite number.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid orientation input: %s=%v", e.Field, e.Value)
}

// Validate rejects readings carrying NaN or infinite angles.
func (r Reading) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"alpha", r.Alpha},
		{"beta", r.Beta},
		{"gamma", r.Gamma},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidInputError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

func DegToRad(v float64) float64 {
	return v * math.Pi / 180
}

func RadToDeg(v float64) float64 {
	return v * 180 / math.Pi
}

// ReadingFromAccel computes beta (pitch) and gamma (roll) from raw
// accelerometer values in any unit. Alpha is 0: an accelerometer alone
// cannot observe heading.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ReadingFromAccel(ax, ay, az float64) Reading {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Reading{
		Alpha: 0,
		Beta:  RadToDeg(pitchRad),
		Gamma: RadToDeg(rollRad),
	}
}

// UnmarshalJSON rejects readings with a missing angle instead of
// silently treating it as 0.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var msg struct {
		Alpha *float64 `json:"alpha"`
		Beta  *float64 `json:"beta"`
		Gamma *float64 `json:"gamma"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	switch {
	case msg.Alpha == nil:
		return &InvalidInputError{Field: "alpha", Value: math.NaN()}
	case msg.Beta == nil:
		return &InvalidInputError{Field: "beta", Value: math.NaN()}
	case msg.Gamma == nil:
		return &InvalidInputError{Field: "gamma", Value: math.NaN()}
	}
	*r = Reading{Alpha: *msg.Alpha, Beta: *msg.Beta, Gamma: *msg.Gamma}
	return nil
}
