package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects a renderer in the worker; Data feeds the template.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Subject  string         `json:"subject,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

const TemplateWelcome = "welcome"
