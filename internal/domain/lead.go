package domain

import "time"

// LeadStatus enumerates triage states for contact-form leads.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusDiscarded LeadStatus = "discarded"
)

// ValidLeadStatus reports whether s is one of the known triage states.
func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusDiscarded:
		return true
	}
	return false
}

// Lead is a contact-form submission awaiting or past triage.
type Lead struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Message   string
	Status    LeadStatus
	CreatedAt time.Time
}
