// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/panorama/internal/app"
	"github.com/relabs-tech/panorama/internal/config"
)

func main() {
	log.Println("starting panorama orientation producer")

	// Load configuration
	if err := config.InitGlobal("panorama_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Printf("source: %s, publishing to %s", config.Get().Source, config.Get().TopicOrientation)

	if err := app.RunProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
