// internal/workers/contract/calculate-fees/config.go
package calculatefees

import "time"

type Config struct {
	Timeout         time.Duration
	FeeStructureTTL time.Duration
	HoursPerMonth   float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		FeeStructureTTL: 10 * time.Minute,
		HoursPerMonth:   160,
	}
}
