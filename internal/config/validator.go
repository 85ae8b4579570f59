package config

import (
	"fmt"
	"slices"
	"strings"

	"LocalBoard/internal/smooth"
	"LocalBoard/internal/state"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "smoothing.granularity")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

const (
	minLineWidth   = 1.0
	maxLineWidth   = 50.0
	maxGranularity = 64
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDrawing()...)
	errors = append(errors, c.validateSmoothing()...)
	errors = append(errors, c.validateShare()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateDrawing() []ValidationError {
	var errors []ValidationError

	if c.Drawing.LineWidth < minLineWidth || c.Drawing.LineWidth > maxLineWidth {
		errors = append(errors, ValidationError{
			Field:   "drawing.line_width",
			Value:   c.Drawing.LineWidth,
			Message: fmt.Sprintf("must be between %g and %g", minLineWidth, maxLineWidth),
		})
	}
	if _, err := state.ParseColor(c.Drawing.LineColor); err != nil {
		errors = append(errors, ValidationError{
			Field:   "drawing.line_color",
			Value:   c.Drawing.LineColor,
			Message: "must be a swatch name or #rrggbb",
		})
	}

	return errors
}

// validateSmoothing rejects bad granularity here so it can never reach a
// stroke in progress.
func (c *Config) validateSmoothing() []ValidationError {
	var errors []ValidationError

	if err := smooth.ValidateGranularity(c.Smoothing.Granularity); err != nil {
		errors = append(errors, ValidationError{
			Field:   "smoothing.granularity",
			Value:   c.Smoothing.Granularity,
			Message: "must be at least 1",
		})
	} else if c.Smoothing.Granularity > maxGranularity {
		errors = append(errors, ValidationError{
			Field:   "smoothing.granularity",
			Value:   c.Smoothing.Granularity,
			Message: fmt.Sprintf("must be at most %d", maxGranularity),
		})
	}

	return errors
}

func (c *Config) validateShare() []ValidationError {
	var errors []ValidationError

	if c.Share.Enabled && (c.Share.Port < 1 || c.Share.Port > 65535) {
		errors = append(errors, ValidationError{
			Field:   "share.port",
			Value:   c.Share.Port,
			Message: "must be between 1 and 65535",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
