/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/hostplan/hostplan/pkg/defaults"
)

// Config holds agent server configuration
type Config struct {
	// Server identity
	Name    string
	Version string

	// Server configuration
	Address string
	Port    int

	// Interval between convergence passes. Zero disables the loop, leaving
	// only the read endpoints.
	Interval time.Duration

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig returns a Config with sensible defaults, overridable through
// the PORT, APPLY_INTERVAL_SECONDS, and SHUTDOWN_TIMEOUT_SECONDS
// environment variables.
func NewConfig() *Config {
	cfg := &Config{
		Name:            "hostplan-agent",
		Address:         "",
		Port:            8080,
		Interval:        defaults.AgentApplyInterval,
		RateLimit:       100,
		RateLimitBurst:  200,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil {
			cfg.Port = port
		}
	}

	if intervalStr := os.Getenv("APPLY_INTERVAL_SECONDS"); intervalStr != "" {
		var seconds int
		if _, err := fmt.Sscanf(intervalStr, "%d", &seconds); err == nil && seconds > 0 {
			cfg.Interval = time.Duration(seconds) * time.Second
		}
	}

	if shutdownStr := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); shutdownStr != "" {
		var seconds int
		if _, err := fmt.Sscanf(shutdownStr, "%d", &seconds); err == nil && seconds > 0 {
			cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}
