package mailer

// EmailJob is the queue payload for one email. The web app only sets To,
// Template and Data; Subject/Text/HTML are for ad-hoc messages.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
}

// Message is a rendered email ready to hand to a Sender.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Tag     string
}
