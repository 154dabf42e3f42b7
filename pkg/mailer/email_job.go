package mailer

import "errors"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (rendered with Data by the worker) or Subject with at least
// one of Text and HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
}

var (
	ErrNoRecipient = errors.New("email job has no recipient")
	ErrNoContent   = errors.New("email job has neither template nor subject with body")
)

// Validate checks the job is deliverable before any rendering happens.
func (j EmailJob) Validate() error {
	if j.To == "" {
		return ErrNoRecipient
	}
	if j.Template == "" && (j.Subject == "" || (j.Text == "" && j.HTML == "")) {
		return ErrNoContent
	}
	return nil
}
