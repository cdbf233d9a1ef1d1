// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// poleThreshold is the value of m[3] beyond which attitude is treated as ±90°.
const poleThreshold = 0.9999

// Euler holds yaw (heading), pitch (attitude) and roll (bank) in radians.
type Euler struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// FromReading converts a degree reading to radians.
func FromReading(r Reading) Euler {
	return Euler{
		Yaw:   DegToRad(r.Alpha),
		Pitch: DegToRad(r.Beta),
		Roll:  DegToRad(r.Gamma),
	}
}

// RotationMatrix returns the row-major heading/attitude/bank matrix of e with
// a 90° rotation about the vertical axis folded into the coefficients, so the
// panorama "forward" matches the device's screen direction.
//
//	[m0 m1 m2]
//	[m3 m4 m5]
//	[m6 m7 m8]
func RotationMatrix(e Euler) [9]float64 {
	ch, sh := math.Cos(e.Yaw), math.Sin(e.Yaw)
	ca, sa := math.Cos(e.Pitch), math.Sin(e.Pitch)
	cb, sb := math.Cos(e.Roll), math.Sin(e.Roll)

	return [9]float64{
		sh*sb - ch*sa*cb, -ch * ca, ch*sa*sb + sh*cb,
		ca * cb, -sa, -ca * sb,
		sh*sa*cb + ch*sb, sh * ca, -sh*sa*sb + ch*cb,
	}
}

// AttitudeMatrix returns the plain heading/attitude/bank matrix of e, without
// the frame adjustment. Normalize extracts angles under this convention, so
// AttitudeMatrix(Normalize(e)) reproduces RotationMatrix(e) away from the poles.
func AttitudeMatrix(e Euler) [9]float64 {
	ch, sh := math.Cos(e.Yaw), math.Sin(e.Yaw)
	ca, sa := math.Cos(e.Pitch), math.Sin(e.Pitch)
	cb, sb := math.Cos(e.Roll), math.Sin(e.Roll)

	return [9]float64{
		ch * ca, -ch*sa*cb + sh*sb, ch*sa*sb + sh*cb,
		sa, ca * cb, -ca * sb,
		-sh * ca, sh*sa*cb + ch*sb, -sh*sa*sb + ch*cb,
	}
}

// Normalize runs e through the frame-adjusted rotation matrix and back,
// resolving the gimbal-lock singularities. At either pole roll is exactly 0
// and pitch is exactly ±π/2.
func Normalize(e Euler) Euler {
	m := RotationMatrix(e)

	var heading, attitude, bank float64
	switch {
	case m[3] > poleThreshold:
		// north pole
		heading = math.Atan2(m[2], m[8])
		attitude = math.Pi / 2
		bank = 0
	case m[3] < -poleThreshold:
		// south pole
		heading = math.Atan2(m[2], m[8])
		attitude = -math.Pi / 2
		bank = 0
	default:
		heading = math.Atan2(-m[6], m[0])
		bank = math.Atan2(-m[5], m[4])
		attitude = math.Asin(m[3])
	}

	return Euler{Yaw: heading, Pitch: attitude, Roll: bank}
}

// AtPole reports whether e sits inside one of the singularity bands.
func AtPole(e Euler) bool {
	m := RotationMatrix(e)
	return m[3] > poleThreshold || m[3] < -poleThreshold
}

// Matrix wraps a row-major 3x3 array as a gonum matrix. The data is copied.
func Matrix(m [9]float64) *mat.Dense {
	data := make([]float64, len(m))
	copy(data, m[:])
	return mat.NewDense(3, 3, data)
}

// Quaternion returns the unit quaternion of the heading/attitude/bank
// orientation e (Shepperd's method on AttitudeMatrix).
func Quaternion(e Euler) quat.Number {
	m := AttitudeMatrix(e)
	m00, m01, m02 := m[0], m[1], m[2]
	m10, m11, m12 := m[3], m[4], m[5]
	m20, m21, m22 := m[6], m[7], m[8]

	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q.Real = s / 4
		q.Imag = (m21 - m12) / s
		q.Jmag = (m02 - m20) / s
		q.Kmag = (m10 - m01) / s
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q.Real = (m21 - m12) / s
		q.Imag = s / 4
		q.Jmag = (m01 + m10) / s
		q.Kmag = (m02 + m20) / s
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q.Real = (m02 - m20) / s
		q.Imag = (m01 + m10) / s
		q.Jmag = s / 4
		q.Kmag = (m12 + m21) / s
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q.Real = (m10 - m01) / s
		q.Imag = (m02 + m20) / s
		q.Jmag = (m12 + m21) / s
		q.Kmag = s / 4
	}

	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}
