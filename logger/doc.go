// Package logger provides structured logging for wirekit applications
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, component-scoped loggers with structured fields, and
// per-component level overrides.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  components:
//	    container: "debug"
//	    optimizer: "warn"
//
// # Usage
//
//	log := logger.Get("container")
//	log.Info("resolved", logger.Fields("type", "db.Pool", "scope", "singleton"))
package logger
