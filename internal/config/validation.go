package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks that the hosts are absolute URLs and that the client id is set.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	validateHost(&errs, "lobby.host", c.Lobby.Host)
	validateHost(&errs, "identity.host", c.Identity.Host)
	if strings.TrimSpace(c.Identity.ClientID) == "" {
		errs.Add("identity.clientId", "is required")
	}
	if c.HTTPTimeout < 0 {
		errs.Add("httpTimeout", "must not be negative", c.HTTPTimeout)
	}
	if c.SessionTimeout > time.Minute {
		errs.Add("sessionTimeout", "must not exceed one minute", c.SessionTimeout)
	}
	return errs
}

func validateHost(errs *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, "is required")
		return
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs.Add(field, "must be an absolute http(s) URL", value)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs.Add(field, "must use http or https", value)
	}
}
