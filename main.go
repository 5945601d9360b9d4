package main

import (
	"log"

	"billgen/cmd"
	"billgen/internal/config"
	"billgen/internal/logger"
)

func main() {
	config.Load()

	if err := logger.Setup(config.AppEnv.LoggerConfig()); err != nil {
		log.Printf("Warning: invalid logging configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	cmd.Execute()
}
