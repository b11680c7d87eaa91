// internal/workers/notification/send-notification/templates.go
package sendnotification

import (
	"bytes"
	"fmt"
	"text/template"

	"vms-workers/internal/models"
)

type messageTemplate struct {
	Subject string
	Body    string
	SMS     string
}

// Templates are keyed by notification type. Variables referenced in the
// bodies come straight from the triggering worker's output.
var templates = map[string]messageTemplate{
	models.NotificationMSAPendingApproval: {
		Subject: "MSA {{.msaNumber}} is awaiting your signature",
		Body:    "The master service agreement {{.msaNumber}} with {{.counterpartyName}} is waiting for your approval. Please review and sign it.",
		SMS:     "MSA {{.msaNumber}} awaits your signature.",
	},
	models.NotificationMSAFullySigned: {
		Subject: "MSA {{.msaNumber}} is fully signed",
		Body:    "Both parties have signed the master service agreement {{.msaNumber}}. It becomes active on {{.effectiveDate}}.",
		SMS:     "MSA {{.msaNumber}} is fully signed.",
	},
	models.NotificationMSARejected: {
		Subject: "MSA {{.msaNumber}} was rejected",
		Body:    "The master service agreement {{.msaNumber}} was rejected: {{.rejectReason}}",
		SMS:     "MSA {{.msaNumber}} was rejected.",
	},
	models.NotificationContractCreated: {
		Subject: "Contract {{.contractNumber}} created",
		Body:    "A new contract {{.contractNumber}} has been created for {{.candidateName}}. Total fee: {{.totalFee}} {{.currency}}.",
		SMS:     "Contract {{.contractNumber}} created.",
	},
	models.NotificationBureauOnboarded: {
		Subject: "Welcome to the platform",
		Body:    "Your bureau {{.bureauName}} has been registered and is pending review. You will be notified once it is activated.",
		SMS:     "Your bureau registration is pending review.",
	},
	models.NotificationDuplicateBlocked: {
		Subject: "Candidate submission blocked",
		Body:    "Your submission for {{.candidateName}} was blocked: the candidate is under fee protection with {{.owningBureauName}} until {{.feeProtectionExpiresAt}}.",
		SMS:     "Candidate submission blocked by fee protection.",
	},
}

func render(notificationType, field string, vars map[string]interface{}) (string, error) {
	tpl, ok := templates[notificationType]
	if !ok {
		return "", fmt.Errorf("no template registered for notification type %s", notificationType)
	}

	text := tpl.Subject
	switch field {
	case "body":
		text = tpl.Body
	case "sms":
		text = tpl.SMS
	}

	parsed, err := template.New(notificationType + ":" + field).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", notificationType, err)
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template %s: %w", notificationType, err)
	}
	return buf.String(), nil
}
