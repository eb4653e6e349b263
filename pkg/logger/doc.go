// Package logger builds configured log/slog loggers for the service.
//
// Output format (json or text), level and static attributes are set through
// functional options or an environment-driven Config. JSON with INFO level is
// the default so production deployments get aggregation-friendly logs without
// any configuration.
//
// The package also provides small attribute helpers (Error, JobID, Channel,
// Component) that keep structured log keys consistent across packages.
package logger
