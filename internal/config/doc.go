// Package config provides configuration management for smugmug-downloader.
//
// This package handles:
//   - Loading and saving settings from YAML files
//   - Default configuration values
//   - Validation
//   - Conversion to PathConfig and Filter for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads to output/
//	// Pagination disabled
//	// Connection failures retried every 5 seconds, without limit
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/smugmug.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.User = "jdoe"
//	err := settings.Save("/path/to/smugmug.yaml")
//
// Saved files contain the session cookie and are written with mode 0600.
package config
