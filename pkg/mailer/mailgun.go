package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Sender delivers rendered messages. The email worker depends on this, not on Mailgun.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Mailgun is the production Sender.
type Mailgun struct {
	client *mg.MailgunImpl
	From   string
}

func NewMailgun(domain, apiKey, from string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), From: from}
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	if msg.To == "" || msg.Subject == "" {
		return errors.New("mailgun: recipient and subject are required")
	}
	out := m.client.NewMessage(m.From, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	if msg.Tag != "" {
		if err := out.AddTag(msg.Tag); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, _, err := m.client.Send(c, out)
	return err
}
