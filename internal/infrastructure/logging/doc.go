// Package logging provides structured logging for the audio controller.
//
// It wraps log/slog with JSON or text output, level filtering and the
// service and version fields on every entry.
//
// Logging is configured via the LoggingConfig in the YAML file:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("controller").Info("trigger forwarded", "trigger", "REGISTER_DOMAIN")
//
// Error attributes are rendered as a group carrying the message and the
// audio error code, so log queries can filter on error.code. The level can
// be changed at runtime with SetLevel or ToggleDebug; child loggers follow.
//
// Core packages do not import this one; they declare a narrow Logger
// interface that *Logger satisfies.
package logging
