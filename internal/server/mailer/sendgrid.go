// Package mailer delivers transactional email through SendGrid and runs
// fire-and-forget deliveries in the background.
package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one rendered email.
type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid is a Sender backed by the SendGrid v3 API.
type SendGrid struct {
	client sendClient
	from   *mail.Email
}

func NewSendGrid(apiKey, from, fromName string) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, from),
	}
}

// Send posts the message. Transport failures and non-2xx answers are
// reported as common.ErrorUpstream.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("%w: recipient is required", common.ErrorValidation)
	}

	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail(msg.ToName, msg.To), msg.PlainText, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", common.ErrorUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendgrid status %d: %s", common.ErrorUpstream, resp.StatusCode, resp.Body)
	}
	return nil
}
