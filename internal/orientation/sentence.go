// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	nmea "github.com/adrianmo/go-nmea"
)

// TypeORI is the sentence type carrying one reading:
//
//	$<talker>ORI,<alpha>,<beta>,<gamma>*<checksum>
//
// Angles are degrees. Any two-letter talker is accepted.
const TypeORI = "ORI"

// ORI is a parsed orientation sentence.
type ORI struct {
	nmea.BaseSentence
	Alpha float64
	Beta  float64
	Gamma float64
}

func newORI(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeORI)
	return ORI{
		BaseSentence: s,
		Alpha:        p.Float64(0, "alpha"),
		Beta:         p.Float64(1, "beta"),
		Gamma:        p.Float64(2, "gamma"),
	}, p.Err()
}

var sentenceParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeORI: newORI,
	},
}

// ParseSentence parses a single ORI line into a reading. Other valid NMEA
// sentences are reported as ErrNotOrientation.
func ParseSentence(line string) (Reading, error) {
	s, err := sentenceParser.Parse(line)
	if err != nil {
		return Reading{}, fmt.Errorf("nmea parse: %w", err)
	}
	ori, ok := s.(ORI)
	if !ok {
		return Reading{}, fmt.Errorf("%w: %s", ErrNotOrientation, s.DataType())
	}
	return Reading{Alpha: ori.Alpha, Beta: ori.Beta, Gamma: ori.Gamma}, nil
}
