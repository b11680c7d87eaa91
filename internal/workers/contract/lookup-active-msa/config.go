// internal/workers/contract/lookup-active-msa/config.go
package lookupactivemsa

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
