package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	// Test selection must be valid unless a custom jobs file overrides it
	validTests := map[string]bool{
		"simple": true, "intermediate": true, "hard": true, "very-hard": true, "all": true,
	}
	if cfg.JobsFile == "" && !validTests[cfg.Test] {
		errs = append(errs, ValidationError{
			Field:   "test",
			Message: fmt.Sprintf("must be one of: simple, intermediate, hard, very-hard, all (got %q)", cfg.Test),
		})
	}

	validQualities := map[string]bool{
		"l": true, "m": true, "h": true, "p": true, "k": true,
	}
	if !validQualities[cfg.Quality] {
		errs = append(errs, ValidationError{
			Field:   "quality",
			Message: fmt.Sprintf("must be one of: l, m, h, p, k (got %q)", cfg.Quality),
		})
	}

	if cfg.LogInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "log_interval",
			Message: "must be positive",
		})
	}

	if cfg.CooldownStandard < 0 {
		errs = append(errs, ValidationError{
			Field:   "cooldown",
			Message: "must not be negative",
		})
	}
	if cfg.CooldownThermal < 0 {
		errs = append(errs, ValidationError{
			Field:   "thermal_cooldown",
			Message: "must not be negative",
		})
	}
	if cfg.CooldownStep <= 0 {
		errs = append(errs, ValidationError{
			Field:   "thermal_step",
			Message: "must be positive",
		})
	}

	if cfg.PythonPath == "" {
		errs = append(errs, ValidationError{
			Field:   "python",
			Message: "must not be empty",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
