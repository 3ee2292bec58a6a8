package mailer

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

type enqueuer interface {
	Enqueue(msg Message) error
}

// Notifier renders the application's emails. Verification mail goes
// through the background queue; reminders are sent inline so the caller
// learns about delivery failures.
type Notifier struct {
	queue    enqueuer
	sender   Sender
	validity time.Duration
}

func NewNotifier(queue enqueuer, sender Sender, verificationValidity time.Duration) *Notifier {
	return &Notifier{queue: queue, sender: sender, validity: verificationValidity}
}

// SendVerification queues the verification email and returns without
// waiting for delivery.
func (n *Notifier) SendVerification(ctx context.Context, email, name, link string) error {
	msg, err := VerificationMessage(email, name, link, n.validity)
	if err != nil {
		return err
	}
	return n.queue.Enqueue(msg)
}

// SendReminder delivers an event reminder synchronously.
func (n *Notifier) SendReminder(ctx context.Context, email string, ev models.EventReminder) error {
	msg, err := ReminderMessage(email, ev)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}
