package mailer

// Template names accepted on the queue.
const (
	TemplateProfileUpdated  = "profile_updated"
	TemplatePasswordChanged = "password_changed"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for notification
// emails. Reset emails are never queued; they are sent synchronously so a
// delivery failure can roll the pending reset token back.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
