// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/panorama/internal/app"
)

func main() {
	viewport := flag.Float64("viewport", 1000, "viewport height in pixels")
	flag.Parse()

	log.Println("starting panorama (mock console)")

	if err := app.RunMockConsole(*viewport); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
