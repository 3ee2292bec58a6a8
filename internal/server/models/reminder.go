package models

import "time"

// EventReminder is the content of a reminder email for one event.
type EventReminder struct {
	Title       string
	EndDate     *time.Time
	Address     string
	Description string
}
