// Package redis provides helpers for connecting to the Redis server that
// backs the service's durable counters and job queue.
//
// Connect retries the connection using the supplied configuration so the
// process tolerates Redis coming up slightly later (common in container
// orchestration). Healthcheck integrates Redis into HTTP readiness probes.
//
// Configuration is described by Config, populated from environment variables
// via the config package.
package redis
