// Package config provides configuration management for musiccheck.
//
// This package handles:
//   - Default configuration values
//   - Loading and saving settings from JSON or YAML files
//   - Overrides from MUSICCHECK_* environment variables and .env files
//   - Pre-flight validation of the collection directories
//
// # Precedence
//
// Command-line flags win over environment variables, which win over the
// config file, which wins over the defaults:
//
//	settings, err := config.Load("musiccheck.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := settings.LoadEnv(".env"); err != nil {
//	    return err
//	}
//	// apply flags here
//	if err := settings.Validate(); err != nil {
//	    return err // fatal, nothing has been scanned
//	}
//
// # Example File
//
//	playlist: /home/me/Music
//	scheme: '{genre}/{artist}/[{year}] {album}/{track} - {title}'
//	audio_ext: mp3,flac
//	manual_fix: false
//	fields:
//	  title:
//	    required: true
//	    pattern: '[^/]+'
package config
