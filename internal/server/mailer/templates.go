package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

var verificationHTML = template.Must(template.New("verification").Parse(`<body style="font-family:Helvetica,Arial,sans-serif;padding:40px;">
<div style="max-width:500px;margin:0 auto;text-align:center;">
<h1 style="color:#2f81d9;">SecondMind</h1>
<p>Hello <b>{{.Name}}</b>,</p>
<p>Thanks for signing up. Confirm your address to activate the account:</p>
<p><a href="{{.Link}}">Verify my account</a></p>
<p style="color:#777;">This link expires in {{.Validity}}.</p>
</div>
</body>`))

var reminderHTML = template.Must(template.New("reminder").Parse(`<body style="font-family:Helvetica,Arial,sans-serif;padding:40px;">
<div style="max-width:500px;margin:0 auto;text-align:center;">
<h1 style="color:#2f81d9;">SecondMind</h1>
<p>You have an upcoming event:</p>
<p style="color:#2f81d9;">{{.Title}}</p>
{{if .When}}<p>{{.When}}</p>
{{end}}{{if .Address}}<p style="color:#666;">{{.Address}}</p>
{{end}}{{if .Description}}<p style="color:#555;">{{.Description}}</p>
{{end}}</div>
</body>`))

// VerificationMessage renders the account verification email.
func VerificationMessage(to, name, link string, validity time.Duration) (Message, error) {
	if name == "" {
		name = to
	}
	data := struct {
		Name, Link, Validity string
	}{name, link, humanDuration(validity)}

	var buf bytes.Buffer
	if err := verificationHTML.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	return Message{
		To:        to,
		ToName:    name,
		Subject:   "Verify your SecondMind account",
		PlainText: fmt.Sprintf("Hello %s,\n\nOpen this link to verify your account: %s\nIt expires in %s.\n", name, link, data.Validity),
		HTML:      buf.String(),
	}, nil
}

// ReminderMessage renders an event reminder.
func ReminderMessage(to string, ev models.EventReminder) (Message, error) {
	data := struct {
		Title, When, Address, Description string
	}{Title: ev.Title, Address: ev.Address, Description: ev.Description}
	if ev.EndDate != nil {
		data.When = ev.EndDate.UTC().Format("Monday, 2 January 2006 15:04 MST")
	}

	var buf bytes.Buffer
	if err := reminderHTML.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render reminder email: %w", err)
	}

	plain := "Upcoming event: " + ev.Title + "\n"
	if data.When != "" {
		plain += data.When + "\n"
	}
	if ev.Address != "" {
		plain += ev.Address + "\n"
	}

	return Message{
		To:        to,
		Subject:   "Reminder: " + ev.Title,
		PlainText: plain,
		HTML:      buf.String(),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0 && d >= time.Minute:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
