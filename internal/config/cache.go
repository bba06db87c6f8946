package config

import "time"

// DirectoryCacheConfig controls the Redis cache in front of the admin
// user directory reads.
type DirectoryCacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadDirectoryCacheConfig reads DIRECTORY_CACHE_* variables.  Entries
// are short lived since the remote service is the source of truth.
func LoadDirectoryCacheConfig() DirectoryCacheConfig {
	cfg := DirectoryCacheConfig{
		Enabled:      envBool("DIRECTORY_CACHE_ENABLED", true),
		TTL:          envDur("DIRECTORY_CACHE_TTL", 30*time.Second),
		Prefix:       envStr("DIRECTORY_CACHE_PREFIX", "cache:directory"),
		MaxBodyBytes: envInt("DIRECTORY_CACHE_MAX_BODY", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
