package main

import (
	"log"
	"os"

	"github.com/wildtag/wildtag-go/cmd"
	"github.com/wildtag/wildtag-go/internal/conf"
	"github.com/wildtag/wildtag-go/internal/logging"
)

// version and buildDate are populated at link time.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	logging.Init()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
