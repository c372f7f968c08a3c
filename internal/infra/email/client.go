package email

import (
	"context"
	"fmt"

	"habit_reminder_service/internal/domain/reminder"
	"habit_reminder_service/internal/domain/user"

	gomail "gopkg.in/gomail.v2"
)

// GomailAdapter implements the notify.Channel interface over SMTP using
// gopkg.in/gomail.v2.
type GomailAdapter struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailAdapter(host string, port int, username, password, from string) *GomailAdapter {
	return &GomailAdapter{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (a *GomailAdapter) Name() string {
	return user.ChannelEmail
}

// Send delivers the reminder as a plain-text email. The reminder reference is
// unused; email has no answer buttons, the user answers in the app.
func (a *GomailAdapter) Send(_ context.Context, recipient *user.User, _ *reminder.Reminder, text string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetHeader("To", recipient.Email)
	m.SetHeader("Subject", "Habit reminder")
	m.SetBody("text/plain", text)

	if err := a.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder email to %s: %w", recipient.Email, err)
	}
	return nil
}
