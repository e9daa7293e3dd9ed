package config

import (
	"fmt"
	"strings"
)

// Sources a configuration value can come from.
const (
	SourceFile = "file"
	SourceEnv  = "env"
	SourceFlag = "flag"
)

// ConfigurationError is one invalid configuration value.
type ConfigurationError struct {
	Field       string   `json:"field"`
	Source      string   `json:"source,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface.
func (ce ConfigurationError) Error() string {
	if ce.Source == "" {
		return fmt.Sprintf("%s: %s", ce.Field, ce.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", ce.Source, ce.Field, ce.Message)
}

// DetailedError returns the error with its suggestions.
func (ce ConfigurationError) DetailedError() string {
	parts := []string{ce.Error()}
	for _, suggestion := range ce.Suggestions {
		parts = append(parts, "  - "+suggestion)
	}
	return strings.Join(parts, "\n")
}

// ConfigurationErrorCollection holds every problem found during validation.
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection.
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection.
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Count returns the number of errors in the collection.
func (cec *ConfigurationErrorCollection) Count() int {
	return len(cec.Errors)
}

// Add adds an error to the collection.
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// GetDetailedReport lists every error with its suggestions.
func (cec *ConfigurationErrorCollection) GetDetailedReport() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	parts := []string{fmt.Sprintf("Configuration has %d error(s):", len(cec.Errors))}
	for _, err := range cec.Errors {
		parts = append(parts, err.DetailedError())
	}
	return strings.Join(parts, "\n")
}
