// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/panorama/internal/imu"
)

// accelerometer is the part of the MPU9250 the source reads.
type accelerometer interface {
	GetAccelerationX() (int16, error)
	GetAccelerationY() (int16, error)
	GetAccelerationZ() (int16, error)
}

type imuSource struct {
	dev accelerometer
}

// NewIMUSource initializes an MPU9250 over SPI and returns a Source that
// reads beta/gamma from the accelerometer. Alpha stays at 0 as there is no
// magnetometer fusion.
func NewIMUSource(spiDev, csPin string, accelRange byte) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU new device: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU init: %w", err)
	}

	if _, err := dev.SelfTest(); err != nil {
		return nil, fmt.Errorf("IMU self-test: %w", err)
	}
	if err := dev.Calibrate(); err != nil {
		return nil, fmt.Errorf("IMU calibrate: %w", err)
	}

	if err := dev.SetAccelRange(accelRange); err != nil {
		return nil, fmt.Errorf("IMU accel range %d: %w", accelRange, err)
	}

	return &imuSource{dev: dev}, nil
}

// ReadRaw reads one accelerometer sample.
func (s *imuSource) ReadRaw() (imu.Raw, error) {
	ax, err := s.dev.GetAccelerationX()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.dev.GetAccelerationY()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.dev.GetAccelerationZ()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	return imu.Raw{Ax: ax, Ay: ay, Az: az}, nil
}

// Next reads the accelerometer and converts the tilt to a reading.
func (s *imuSource) Next() (Reading, error) {
	raw, err := s.ReadRaw()
	if err != nil {
		return Reading{}, err
	}
	return ReadingFromRaw(raw), nil
}

// ReadingFromRaw converts a raw IMU sample into a reading using the
// accelerometer tilt only.
func ReadingFromRaw(raw imu.Raw) Reading {
	return ReadingFromAccel(float64(raw.Ax), float64(raw.Ay), float64(raw.Az))
}
