// Package config provides fail-open environment loading shared by the
// worker and API configuration: every loader returns a valid value, either
// the parsed environment value or the default with a warning attached.
package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value.
// Value holds the loaded value (or the default when FallbackApplied is
// true); Warnings carries one message per fallback applied.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString reads a string from the environment, returning the default
// when the variable is unset. No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback reads a string from the environment and validates
// it. An unset variable yields the default without a warning; a value that
// fails validation yields the default with a warning. Never returns an
// invalid value.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fallbackWarning(envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration reads a Go duration string ("30s", "5m", "1h30m") from
// the environment, falling back to the default when parsing or validation
// fails.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fallbackWarning(envKey, valueStr, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fallbackWarning(envKey, valueStr, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt reads an integer from the environment, falling back to the
// default when parsing or validation fails.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	var parsed int
	if _, err := fmt.Sscanf(valueStr, "%d", &parsed); err != nil {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fallbackWarning(envKey, valueStr, fmt.Errorf("invalid integer format"), defaultValue)},
			FallbackApplied: true,
		}
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return ConfigLoadResult{
				Value:           defaultValue,
				Warnings:        []string{fallbackWarning(envKey, valueStr, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvBool reads a boolean from the environment. Accepted values follow
// strconv.ParseBool conventions ("1", "t", "true", "0", "f", "false" in
// any common casing); anything else falls back to the default.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	switch valueStr {
	case "1", "t", "T", "true", "TRUE", "True":
		return ConfigLoadResult{Value: true}
	case "0", "f", "F", "false", "FALSE", "False":
		return ConfigLoadResult{Value: false}
	default:
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fallbackWarning(envKey, valueStr, fmt.Errorf("invalid boolean format, expected 'true' or 'false'"), defaultValue)},
			FallbackApplied: true,
		}
	}
}

func fallbackWarning(envKey, value string, err error, defaultValue interface{}) string {
	return fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, value, err, defaultValue)
}
