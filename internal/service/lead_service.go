package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/creativa-studio/lead-service/internal/captcha"
	"github.com/creativa-studio/lead-service/internal/domain"
	"github.com/creativa-studio/lead-service/internal/events"
	"github.com/creativa-studio/lead-service/internal/repository"
	apperrors "github.com/creativa-studio/lead-service/pkg/util/errorutil"
)

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^[0-9()+.\s-]{7,20}$`)
)

// LeadService coordinates the lead lifecycle.
type LeadService struct {
	leads      repository.LeadRepository
	verifier   captcha.Verifier
	limiter    RateLimiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// LeadDependencies bundles collaborators for the lead service.
type LeadDependencies struct {
	LeadRepo   repository.LeadRepository
	Verifier   captcha.Verifier
	Limiter    RateLimiter
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SubmissionInput describes a contact-form submission payload.
type SubmissionInput struct {
	Name        string
	Email       string
	Phone       string
	Message     string
	AcceptTerms bool
}

// NewLeadService constructs the service.
func NewLeadService(deps LeadDependencies) *LeadService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		leads:      deps.LeadRepo,
		verifier:   deps.Verifier,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Submit validates and persists a new lead after the verification gate passes.
// The gate runs before persistence; failing it aborts with no side effects.
func (s *LeadService) Submit(ctx context.Context, input SubmissionInput, verificationToken, remoteIP string) (*domain.Lead, error) {
	if s.limiter != nil && remoteIP != "" {
		allowed, err := s.limiter.Allow(ctx, remoteIP)
		if err != nil {
			// a broken limiter must not block legitimate submissions
			s.logger.Warn("rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, apperrors.NewRateLimited("too many submissions, try again later")
		}
	}

	fieldErrors := validateSubmission(input)
	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationError("invalid submission", fieldErrors)
	}

	if err := s.verifier.Verify(ctx, verificationToken, remoteIP); err != nil {
		if errors.Is(err, captcha.ErrMissingToken) {
			return nil, apperrors.NewValidationError("invalid submission", map[string]any{
				"verificationToken": "verification token is required",
			})
		}
		return nil, apperrors.NewValidationError("human verification failed", nil)
	}

	lead := &domain.Lead{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   strings.TrimSpace(input.Phone),
		Message: strings.TrimSpace(input.Message),
		Status:  domain.LeadStatusNew,
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventLeadCreated,
		LeadID: lead.ID,
		Actor:  visitorActor(),
		Payload: events.LeadCreatedPayload{
			Name:    lead.Name,
			Email:   lead.Email,
			Phone:   lead.Phone,
			Message: lead.Message,
		},
	})
	return lead, nil
}

// List returns all leads ordered by creation time, newest first.
func (s *LeadService) List(ctx context.Context) ([]domain.Lead, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return leads, nil
}

// UpdateStatus transitions a lead to a new triage state.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, adminID string) (*domain.Lead, error) {
	if !domain.ValidLeadStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status": "status must be one of new, contacted, discarded",
		})
	}

	current, err := s.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	updated, err := s.leads.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	if current.Status != updated.Status {
		s.publishEvent(ctx, events.Event{
			Type:   events.EventLeadStatusChanged,
			LeadID: updated.ID,
			Actor:  adminActor(adminID),
			Payload: events.LeadStatusChangedPayload{
				OldStatus: current.Status,
				NewStatus: updated.Status,
			},
		})
	}
	return updated, nil
}

// Delete removes a single lead.
func (s *LeadService) Delete(ctx context.Context, id, adminID string) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("lead", map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventLeadDeleted,
		LeadID:  id,
		Actor:   adminActor(adminID),
		Payload: events.LeadDeletedPayload{Count: 1},
	})
	return nil
}

// BulkDelete removes every listed lead that exists and reports how many were
// removed. An empty id set is a no-op, not an error.
func (s *LeadService) BulkDelete(ctx context.Context, ids []string, adminID string) (int64, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return 0, nil
	}

	count, err := s.leads.DeleteMany(ctx, unique)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	if count > 0 {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventLeadDeleted,
			Actor:   adminActor(adminID),
			Payload: events.LeadDeletedPayload{Count: count},
		})
	}
	return count, nil
}

func validateSubmission(input SubmissionInput) map[string]any {
	fieldErrors := map[string]any{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		fieldErrors["name"] = "name is required"
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		fieldErrors["email"] = "email is required"
	} else if !emailPattern.MatchString(email) {
		fieldErrors["email"] = "email is not a valid address"
	}

	if phone := strings.TrimSpace(input.Phone); phone != "" && !phonePattern.MatchString(phone) {
		fieldErrors["phone"] = "phone is not a valid number"
	}

	if strings.TrimSpace(input.Message) == "" {
		fieldErrors["message"] = "message is required"
	}

	if !input.AcceptTerms {
		fieldErrors["acceptTerms"] = "terms must be accepted"
	}

	return fieldErrors
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *LeadService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func visitorActor() events.Actor {
	return events.Actor{Type: events.ActorTypeVisitor}
}

func adminActor(adminID string) events.Actor {
	if adminID == "" {
		return events.Actor{Type: events.ActorTypeAdmin}
	}
	return events.Actor{Type: events.ActorTypeAdmin, AdminID: &adminID}
}
