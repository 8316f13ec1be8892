package domain

import "time"

// Admin is a dashboard operator allowed to triage leads.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
