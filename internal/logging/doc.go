// Package logging builds the slog logger shared by every component.
//
// The logger is created once in cmd/server from config.LoggingConfig and
// injected into the gateway, service, ingest and telemetry layers. Components
// derive their own child loggers with logger.With("component", ...).
package logging
