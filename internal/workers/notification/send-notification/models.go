// internal/workers/notification/send-notification/models.go
package sendnotification

type Input struct {
	Type          string                 `json:"type"`
	RecipientType string                 `json:"recipientType"` // BUREAU or COMPANY
	RecipientID   string                 `json:"recipientId"`
	Priority      string                 `json:"priority,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type Output struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
	EmailSent bool   `json:"emailSent"`
	SMSSent   bool   `json:"smsSent"`
	SentAt    string `json:"sentAt"` // ISO 8601
}
