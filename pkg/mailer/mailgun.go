package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/user-accounts/pkg/mailer/templates"
)

// Mailgun sends rendered account emails through the Mailgun API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) (*Mailgun, error) {
	if domain == "" || apiKey == "" || sender == "" {
		return nil, errors.New("mailgun: domain, api key and sender are required")
	}
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}, nil
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

// SendTemplate renders the named template with data and sends it to data.Email.
func (m *Mailgun) SendTemplate(ctx context.Context, name string, data templates.EmailData) error {
	subject, text, html, err := templates.Render(name, data)
	if err != nil {
		return err
	}
	return m.Send(ctx, data.Email, subject, text, html)
}
