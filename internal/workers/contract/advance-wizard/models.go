// internal/workers/contract/advance-wizard/models.go
package advancewizard

import "vms-workers/internal/wizard"

// Supported wizard events.
const (
	EventStart     = "START"
	EventNext      = "NEXT"
	EventBack      = "BACK"
	EventSetFields = "SET_FIELDS"
)

type Input struct {
	SessionID string                 `json:"sessionId"`
	UserID    string                 `json:"userId"`
	Event     string                 `json:"event"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

type Output struct {
	SessionID        string                 `json:"sessionId"`
	Step             int                    `json:"step"`
	StepName         string                 `json:"stepName"`
	Version          int                    `json:"version"`
	Clamped          bool                   `json:"clamped"`
	ValidationErrors []wizard.FieldError    `json:"validationErrors,omitempty"`
	SubmitPayload    map[string]interface{} `json:"submitPayload,omitempty"`
}
