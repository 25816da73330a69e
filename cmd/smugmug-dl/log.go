package main

import (
	"fmt"
	"os"

	"github.com/handiism/smugmug-downloader/internal/config"
	"github.com/handiism/smugmug-downloader/internal/download"
	log "github.com/sirupsen/logrus"
)

func newLogger(settings *config.Settings) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(os.Stdout)

	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	logger.SetLevel(level)

	switch settings.LogFormat {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:          true,
			DisableLevelTruncation: true,
		})
	}

	return logger, nil
}

// progressLogger forwards manager events to logger.
func progressLogger(logger *log.Logger) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		logger.Log(logLevel(event.Level), event.Message)
	}
}

func logLevel(level download.ProgressLevel) log.Level {
	switch level {
	case download.LevelVerbose:
		return log.DebugLevel
	case download.LevelWarning:
		return log.WarnLevel
	case download.LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
