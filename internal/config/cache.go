package config

import (
	"strings"
	"time"
)

// CacheConfig tunes the Redis response cache. Catalog reads dominate the
// traffic here, so cached bodies stay small and short-lived; entries are
// keyed per caller because entitled users and guests see different payloads.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methodSet(getenv("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func methodSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range strings.Split(csv, ",") {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			set[m] = true
		}
	}
	return set
}
