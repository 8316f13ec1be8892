package dashboard

import (
	"strings"
	"time"

	"github.com/creativa-studio/lead-service/internal/domain"
)

// StatusFilter narrows leads by triage state; "all" passes everything.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusNew       StatusFilter = "new"
	StatusContacted StatusFilter = "contacted"
	StatusDiscarded StatusFilter = "discarded"
)

// DateRange narrows leads by creation cutoff.
type DateRange string

const (
	DateAll   DateRange = "all"
	DateToday DateRange = "today"
	DateWeek  DateRange = "week"
	DateMonth DateRange = "month"
)

// Filter combines the dashboard predicates. Zero values pass everything.
type Filter struct {
	Search string
	Status StatusFilter
	Date   DateRange
}

// ApplyFilters retains leads matching every predicate. Predicates intersect,
// so evaluation order never changes the result, and filtering an already
// matching set again is a no-op.
func ApplyFilters(leads []domain.Lead, f Filter, now time.Time) []domain.Lead {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	cutoff, hasCutoff := dateCutoff(f.Date, now)

	filtered := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if term != "" && !matchesSearch(lead, term) {
			continue
		}
		if f.Status != "" && f.Status != StatusAll && domain.LeadStatus(f.Status) != lead.Status {
			continue
		}
		if hasCutoff && lead.CreatedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, lead)
	}
	return filtered
}

func matchesSearch(lead domain.Lead, term string) bool {
	for _, field := range []string{lead.Name, lead.Email, lead.Phone, lead.Message, string(lead.Status)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func dateCutoff(r DateRange, now time.Time) (time.Time, bool) {
	switch r {
	case DateToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
	case DateWeek:
		return now.AddDate(0, 0, -7), true
	case DateMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}
