// Package config loads application configuration from environment variables
// into tagged Go structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is loaded once per process (if present), then env.Parse
// fills the struct based on `env` field tags. Variables marked `required`
// cause Load to fail, which startup code turns into an immediate non-zero
// exit — a process with missing credentials must not come up half-working.
//
// # Usage
//
//	type HTTPConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg HTTPConfig
//	config.MustLoad(&cfg)
package config
