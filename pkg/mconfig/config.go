// Package mconfig loads process configuration from the environment,
// following the single-struct-with-env-tags convention the teacher's
// own bootstrap layer uses (there backed by a private helper this
// module replaces with the actively-maintained caarlos0/env).
package mconfig

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load reads a .env file if present (missing is not an error — it's
// absent in container deployments that inject the environment
// directly) and populates cfg's `env`-tagged fields.
func Load(cfg any) error {
	_ = godotenv.Load()

	return env.Parse(cfg)
}
