// internal/workers/notification/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	Timeout     time.Duration
	SenderEmail string
	// SMS is only attempted at this priority or above; everything else is
	// email-only.
	SMSPriority string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     20 * time.Second,
		SenderEmail: "noreply@vms.example",
		SMSPriority: "HIGH",
	}
}
