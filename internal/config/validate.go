package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSourcePatterns indicates an empty scan.source list.
	ErrNoSourcePatterns = errors.New("no source patterns configured")

	// ErrInvalidTimeout indicates a negative per-file timeout.
	ErrInvalidTimeout = errors.New("invalid file timeout")

	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {},
}

// Validate checks structural validity of a loaded configuration.
func Validate(cfg *Config) error {
	if len(cfg.Scan.Source) == 0 {
		return ErrNoSourcePatterns
	}
	if cfg.Scan.FileTimeoutSeconds < 0 {
		return fmt.Errorf("%w: %d seconds", ErrInvalidTimeout, cfg.Scan.FileTimeoutSeconds)
	}
	if cfg.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	if cfg.Output.NodesFile == "" || cfg.Output.SearchFile == "" {
		return errors.New("output stream file names must not be empty")
	}
	if _, ok := validLogLevels[cfg.Log.Level]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level)
	}
	return nil
}
