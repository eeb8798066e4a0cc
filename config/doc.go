// Package config loads configuration for fetchkit client stacks.
//
// It uses Viper to read a YAML file found in standard locations (or set
// explicitly), loads a .env file through godotenv, and overlays environment
// variables prefixed with the upper-cased service name.
//
// # Usage
//
//	var cfg stack.Config
//	err := config.LoadConfig("billing-api", &cfg)
//
// With service "billing-api", BILLING_API_RETRY_MAX_ATTEMPTS=5 overrides
// retry.max_attempts.
package config
