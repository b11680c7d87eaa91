// internal/workers/candidate/create-record/config.go
package createrecord

import "time"

type Config struct {
	Timeout time.Duration
	// Fee-protection window applied when the bureau's fee structure does not
	// set guaranteePeriodDays.
	DefaultOwnershipDays int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:              15 * time.Second,
		DefaultOwnershipDays: 365,
	}
}
