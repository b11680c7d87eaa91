// internal/models/notification.go
package models

// Notification channels and priorities.
const (
	NotificationChannelEmail = "EMAIL"
	NotificationChannelSMS   = "SMS"

	NotificationPriorityLow    = "LOW"
	NotificationPriorityNormal = "NORMAL"
	NotificationPriorityHigh   = "HIGH"
)

// Notification types emitted by the workers.
const (
	NotificationMSAPendingApproval = "MSA_PENDING_APPROVAL"
	NotificationMSAFullySigned     = "MSA_FULLY_SIGNED"
	NotificationMSARejected        = "MSA_REJECTED"
	NotificationContractCreated    = "CONTRACT_CREATED"
	NotificationBureauOnboarded    = "BUREAU_ONBOARDED"
	NotificationDuplicateBlocked   = "DUPLICATE_SUBMISSION_BLOCKED"
)

// Notification is a rendering-ready message for a single recipient.
type Notification struct {
	Type      string                 `json:"type"`
	Channel   string                 `json:"channel"`
	Priority  string                 `json:"priority"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}
