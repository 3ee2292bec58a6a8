package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

type ReminderSender interface {
	SendReminder(ctx context.Context, email string, ev models.EventReminder) error
}

// ReminderService emails event reminders on behalf of the client.
type ReminderService struct {
	mail ReminderSender
}

func NewReminderService(mail ReminderSender) *ReminderService {
	return &ReminderService{mail: mail}
}

// Send delivers the reminder synchronously; delivery failures are returned.
func (s *ReminderService) Send(ctx context.Context, email string, ev models.EventReminder) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(ev.Title) == "" {
		return fmt.Errorf("%w: email and event title are required", common.ErrorValidation)
	}
	return s.mail.SendReminder(ctx, email, ev)
}
