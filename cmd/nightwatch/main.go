package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ericfisherdev/nightwatch/internal/cmd"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
)

func main() {
	// Best effort: a missing .env file just means plain environment config.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}
