package models

import "time"

// User is a stored identity. Email, PasswordHash and GoogleID are empty
// when absent: federated-only identities have no password, password
// identities have no Google subject.
type User struct {
	ID                  string
	Email               string
	Name                string
	PasswordHash        string
	GoogleID            string
	IsVerified          bool
	VerificationToken   string
	VerificationExpires time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UserSummary is the public view of an identity returned with sessions.
type UserSummary struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Service string `json:"service,omitempty"`
}

func (u *User) Summary(service string) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Service: service}
}
