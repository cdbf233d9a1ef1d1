// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"
)

// ErrNotOrientation is returned for valid NMEA sentences that carry no reading.
var ErrNotOrientation = errors.New("not an orientation sentence")

// StreamSource reads ORI sentences line by line from a byte stream, such as
// a serial port bridged to a phone or an attitude sensor.
type StreamSource struct {
	rc     io.ReadCloser
	reader *bufio.Reader
}

// NewSerialSource opens the serial port and returns a StreamSource on it.
func NewSerialSource(portName string, baudRate uint) (*StreamSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", portName, err)
	}
	log.Printf("serial: port opened on %s at %d baud", portName, baudRate)

	return NewStreamSource(port), nil
}

// NewStreamSource wraps any ReadCloser.
func NewStreamSource(rc io.ReadCloser) *StreamSource {
	return &StreamSource{rc: rc, reader: bufio.NewReader(rc)}
}

// Next blocks until the next ORI sentence arrives. Blank lines, noise and
// other sentence types are skipped; read errors (including io.EOF) are returned.
func (s *StreamSource) Next() (Reading, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return Reading{}, err
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "$") {
			r, perr := ParseSentence(line)
			if perr == nil {
				return r, nil
			}
			// partial or foreign sentences are expected on a shared line
		}

		if err != nil {
			return Reading{}, err
		}
	}
}

func (s *StreamSource) Close() error {
	return s.rc.Close()
}
