package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/amalg/go-digger/internal/game"
	"github.com/amalg/go-digger/internal/gui"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default: built-in settings)")
	seed := flag.Int64("seed", 0, "World seed (overrides the config; 0 keeps it)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	logger := log.New()
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	config, err := game.LoadConfigOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		config.Seed = *seed
	}

	engine := game.NewEngine(config, nil, logger)
	logger.WithFields(log.Fields{"seed": config.Seed, "width": config.WorldWidth, "height": config.WorldHeight}).Info("World generated")

	if err := gui.Run(engine, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
