package main

import (
	"log/slog"
	"os"

	"github.com/Silexemple/satoshi-casino21/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	casinoServer, err := server.NewCasinoServer()
	if err != nil {
		slog.Error("Failed to create casino server", "error", err)
		os.Exit(1)
	}

	// Start server (blocks until shutdown)
	if err := casinoServer.Start(); err != nil {
		slog.Error("Failed to start casino server", "error", err)
		os.Exit(1)
	}
}
