package server

import "time"

// Config holds server configuration.
type Config struct {
	// Server settings
	ListenAddr string

	// API settings
	PathPrefix string

	// CORS settings
	CORSOrigins []string

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults. Write timeout is
// generous because sync jobs run inline in the request.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":8080",
		PathPrefix:   "/api/v1",
		CORSOrigins:  []string{"*"},
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}
