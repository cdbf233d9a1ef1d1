// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/panorama/internal/orientation"
	"github.com/relabs-tech/panorama/internal/panorama"
)

// RunMockConsole drives an in-process tracker from the mock source and
// prints the offsets. No broker or config file needed.
func RunMockConsole(viewportHeight float64) error {
	tr := panorama.NewTracker(viewportHeight)
	if _, err := tr.Register("main", panorama.DefaultSettings); err != nil {
		return err
	}

	src := orientation.NewMockSource()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if err := step(tr, src); err != nil {
			return err
		}
		if tr.State() == panorama.Tracking {
			fmt.Println(formatSnapshot(tr.Snapshot()))
		}
	}
	return nil
}

func step(tr *panorama.Tracker, src orientation.Source) error {
	r, err := src.Next()
	if err != nil {
		return err
	}
	return tr.OnOrientation(r)
}
