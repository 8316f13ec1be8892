package dashboard

import "github.com/creativa-studio/lead-service/internal/domain"

// Stats is the derived, non-persisted count view over the lead collection.
type Stats struct {
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Discarded int `json:"discarded"`
	Total     int `json:"total"`
}

// ComputeStats counts leads per triage state. The per-status counts always
// sum to Total.
func ComputeStats(leads []domain.Lead) Stats {
	stats := Stats{Total: len(leads)}
	for _, lead := range leads {
		switch lead.Status {
		case domain.LeadStatusNew:
			stats.New++
		case domain.LeadStatusContacted:
			stats.Contacted++
		case domain.LeadStatusDiscarded:
			stats.Discarded++
		}
	}
	return stats
}
