// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateRoot(cfg, errs)
	v.validateServer(cfg, errs)
	v.validateTimezone(cfg, errs)
	v.validateCache(cfg, errs)
	v.validateLogs(cfg, errs)
	v.validateLogging(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateRoot(cfg *Config, errs *ValidationError) {
	if cfg.Root == "" {
		errs.Add("root", "is required")
		return
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		errs.Add("root", fmt.Sprintf("cannot stat %q: %v", cfg.Root, err))
		return
	}
	if !info.IsDir() {
		errs.Add("root", fmt.Sprintf("%q is not a directory", cfg.Root))
	}
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 1 and 65535")
	}
}

func (v *Validator) validateTimezone(cfg *Config, errs *ValidationError) {
	if cfg.Timezone == "" {
		return
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs.Add("timezone", fmt.Sprintf("unrecognized IANA zone %q", cfg.Timezone))
	}
}

func (v *Validator) validateCache(cfg *Config, errs *ValidationError) {
	if cfg.Cache.ScanHeadBytes <= 0 {
		errs.Add("cache.scan_head_bytes", "must be positive")
	}
	if cfg.Cache.ScanTailBytes <= 0 {
		errs.Add("cache.scan_tail_bytes", "must be positive")
	}
}

func (v *Validator) validateLogs(cfg *Config, errs *ValidationError) {
	if cfg.Logs.SoftCapBytes <= 0 {
		errs.Add("logs.soft_cap_bytes", "must be positive")
	}
	switch cfg.Logs.Monotonicity {
	case "assume", "validate", "linear-fallback":
	default:
		errs.Add("logs.monotonicity", `must be one of "assume", "validate", "linear-fallback"`)
	}
}

func (v *Validator) validateLogging(cfg *Config, errs *ValidationError) {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs.Add("logging.level", `must be one of "debug", "info", "warn", "error"`)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		errs.Add("logging.format", `must be one of "json", "console"`)
	}
}
