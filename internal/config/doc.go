// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional config file, and a .env fallback.
// It provides type-safe access to the settings each component needs (server,
// database, query limits, debug keys, metrics identity) while keeping
// configuration details separate from request-handling logic.
package config
