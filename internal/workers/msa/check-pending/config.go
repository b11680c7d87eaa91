// internal/workers/msa/check-pending/config.go
package checkpending

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
		// Matches the documented staleness window for the pending badge.
		CacheTTL: 2 * time.Minute,
	}
}
