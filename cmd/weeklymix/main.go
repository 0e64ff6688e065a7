package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/henry-johnson/spotify-playlist-creator/internal/cli"
)

// version is stamped by the release build via -ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
