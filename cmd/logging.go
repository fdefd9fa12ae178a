package cmd

import (
	"os"

	"teto/config"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the level and formatter for the environment
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
