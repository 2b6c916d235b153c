package main

import (
	"log"

	"github.com/joho/godotenv"

	"TreasuryDash/internal/config"
	"TreasuryDash/internal/logger"
)

func main() {
	// Load .env for local dev
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		settings = cfg
	}

	Execute()
}
