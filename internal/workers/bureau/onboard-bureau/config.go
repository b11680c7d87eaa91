// internal/workers/bureau/onboard-bureau/config.go
package onboardbureau

import "time"

type Config struct {
	Timeout time.Duration
	// Default fee structure seeded for every newly onboarded bureau.
	DefaultFeePercentage   float64
	DefaultPaymentTerms    int
	DefaultGuaranteeDays   int
	DefaultCurrency        string
	SkipRegistryValidation bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:              20 * time.Second,
		DefaultFeePercentage: 20.0,
		DefaultPaymentTerms:  30,
		DefaultGuaranteeDays: 90,
		DefaultCurrency:      "EUR",
	}
}
