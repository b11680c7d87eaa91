// internal/workers/contract/advance-wizard/config.go
package advancewizard

import "time"

type Config struct {
	Timeout    time.Duration
	SessionTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		SessionTTL: 60 * time.Minute,
	}
}
