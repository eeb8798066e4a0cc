// Package logger provides structured logging for fetchkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Loggers pick up the
// trace and span IDs of the active OpenTelemetry span via WithContext.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("http-client")
//	log.Info("request sent", logger.Fields("method", "GET", "status", 200))
package logger
