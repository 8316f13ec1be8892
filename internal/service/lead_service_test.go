package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativa-studio/lead-service/internal/captcha"
	"github.com/creativa-studio/lead-service/internal/domain"
	"github.com/creativa-studio/lead-service/internal/events"
	apperrors "github.com/creativa-studio/lead-service/pkg/util/errorutil"
)

// Fakes

type fakeLeadRepo struct {
	leads     map[string]*domain.Lead
	nextID    int
	createErr error
	listErr   error
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[string]*domain.Lead)}
}

func (r *fakeLeadRepo) Create(_ context.Context, lead *domain.Lead) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	lead.ID = fmt.Sprintf("lead-%d", r.nextID)
	lead.CreatedAt = time.Now()
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

func (r *fakeLeadRepo) List(_ context.Context) ([]domain.Lead, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		out = append(out, *lead)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeLeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *lead
	return &copied, nil
}

func (r *fakeLeadRepo) UpdateStatus(_ context.Context, id string, status domain.LeadStatus) (*domain.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	lead.Status = status
	copied := *lead
	return &copied, nil
}

func (r *fakeLeadRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.leads[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := r.leads[id]; ok {
			delete(r.leads, id)
			count++
		}
	}
	return count, nil
}

type fakeVerifier struct {
	err   error
	calls int
}

func (v *fakeVerifier) Verify(_ context.Context, token, _ string) error {
	v.calls++
	if strings.TrimSpace(token) == "" {
		return captcha.ErrMissingToken
	}
	return v.err
}

type fakeLimiter struct {
	allowed bool
	err     error
}

func (l *fakeLimiter) Allow(context.Context, string) (bool, error) {
	return l.allowed, l.err
}

type eventRecorder struct {
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return nil
}

func newTestService(repo *fakeLeadRepo, verifier *fakeVerifier, limiter RateLimiter) (*LeadService, *eventRecorder) {
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	dispatcher.Subscribe(events.EventLeadCreated, recorder.record)
	dispatcher.Subscribe(events.EventLeadStatusChanged, recorder.record)
	dispatcher.Subscribe(events.EventLeadDeleted, recorder.record)

	svc := NewLeadService(LeadDependencies{
		LeadRepo:   repo,
		Verifier:   verifier,
		Limiter:    limiter,
		Dispatcher: dispatcher,
	})
	return svc, recorder
}

func validInput() SubmissionInput {
	return SubmissionInput{
		Name:        "Ana",
		Email:       "Ana@X.com ",
		Phone:       "555-1234",
		Message:     "Hello there, need a quote",
		AcceptTerms: true,
	}
}

// Tests

func TestSubmitPersistsNewLead(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, recorder := newTestService(repo, &fakeVerifier{}, nil)

	before := time.Now()
	lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, domain.LeadStatusNew, lead.Status)
	assert.Equal(t, "ana@x.com", lead.Email)
	assert.False(t, lead.CreatedAt.Before(before))
	assert.Len(t, repo.leads, 1)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, events.EventLeadCreated, recorder.events[0].Type)
	assert.Equal(t, lead.ID, recorder.events[0].LeadID)
}

func TestSubmitValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmissionInput)
		field  string
	}{
		{"missing name", func(i *SubmissionInput) { i.Name = "  " }, "name"},
		{"missing email", func(i *SubmissionInput) { i.Email = "" }, "email"},
		{"bad email", func(i *SubmissionInput) { i.Email = "not-an-email" }, "email"},
		{"bad phone", func(i *SubmissionInput) { i.Phone = "abc" }, "phone"},
		{"missing message", func(i *SubmissionInput) { i.Message = "" }, "message"},
		{"terms not accepted", func(i *SubmissionInput) { i.AcceptTerms = false }, "acceptTerms"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeLeadRepo()
			verifier := &fakeVerifier{}
			svc, recorder := newTestService(repo, verifier, nil)

			input := validInput()
			tc.mutate(&input)

			_, err := svc.Submit(context.Background(), input, "tok", "1.2.3.4")
			require.Error(t, err)

			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Contains(t, domainErr.Details, tc.field)

			assert.Empty(t, repo.leads, "nothing may persist on validation failure")
			assert.Empty(t, recorder.events)
			assert.Zero(t, verifier.calls, "gate must not run for invalid input")
		})
	}
}

func TestSubmitOptionalPhone(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, nil)

	input := validInput()
	input.Phone = ""

	_, err := svc.Submit(context.Background(), input, "tok", "1.2.3.4")
	require.NoError(t, err)
}

func TestSubmitVerificationRejected(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, recorder := newTestService(repo, &fakeVerifier{err: captcha.ErrVerificationFailed}, nil)

	_, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	assert.Empty(t, repo.leads, "gate failure must abort before persistence")
	assert.Empty(t, recorder.events)
}

func TestSubmitMissingToken(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, nil)

	_, err := svc.Submit(context.Background(), validInput(), "", "1.2.3.4")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "verificationToken")
	assert.Empty(t, repo.leads)
}

func TestSubmitRateLimited(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, &fakeLimiter{allowed: false})

	_, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RATE_LIMITED", domainErr.Code)
	assert.Empty(t, repo.leads)
}

func TestSubmitLimiterFailureDoesNotBlock(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, &fakeLimiter{allowed: false, err: errors.New("redis down")})

	_, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)
	assert.Len(t, repo.leads, 1)
}

func TestUpdateStatusTransitions(t *testing.T) {
	for _, status := range []domain.LeadStatus{
		domain.LeadStatusContacted,
		domain.LeadStatusDiscarded,
		domain.LeadStatusNew,
	} {
		t.Run(string(status), func(t *testing.T) {
			repo := newFakeLeadRepo()
			svc, _ := newTestService(repo, &fakeVerifier{}, nil)
			lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
			require.NoError(t, err)

			updated, err := svc.UpdateStatus(context.Background(), lead.ID, status, "admin-1")
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
		})
	}
}

func TestUpdateStatusInvalidValueRejectedWithoutMutation(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, recorder := newTestService(repo, &fakeVerifier{}, nil)
	lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)
	recorder.events = nil

	_, err = svc.UpdateStatus(context.Background(), lead.ID, domain.LeadStatus("archived"), "admin-1")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	stored, err := repo.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, stored.Status)
	assert.Empty(t, recorder.events)
}

func TestUpdateStatusUnknownID(t *testing.T) {
	svc, _ := newTestService(newFakeLeadRepo(), &fakeVerifier{}, nil)

	_, err := svc.UpdateStatus(context.Background(), "missing", domain.LeadStatusContacted, "admin-1")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestUpdateStatusPublishesChangeEvent(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, recorder := newTestService(repo, &fakeVerifier{}, nil)
	lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)
	recorder.events = nil

	_, err = svc.UpdateStatus(context.Background(), lead.ID, domain.LeadStatusContacted, "admin-1")
	require.NoError(t, err)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, events.EventLeadStatusChanged, recorder.events[0].Type)
	payload, ok := recorder.events[0].Payload.(events.LeadStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.LeadStatusNew, payload.OldStatus)
	assert.Equal(t, domain.LeadStatusContacted, payload.NewStatus)
}

func TestDeleteRemovesLead(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, nil)
	lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), lead.ID, "admin-1"))

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	for _, l := range leads {
		assert.NotEqual(t, lead.ID, l.ID)
	}
}

func TestDeleteUnknownIDLeavesStoreUnchanged(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, nil)
	_, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "missing", "admin-1")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Len(t, repo.leads, 1)
}

func TestBulkDeleteRemovesExactSubset(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, nil)

	var ids []string
	for i := 0; i < 3; i++ {
		lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
		require.NoError(t, err)
		ids = append(ids, lead.ID)
	}

	count, err := svc.BulkDelete(context.Background(), []string{ids[0], ids[1], "missing", ids[0]}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, ids[2], leads[0].ID)
}

func TestBulkDeleteEmptyIsNoOp(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, recorder := newTestService(repo, &fakeVerifier{}, nil)
	_, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
	require.NoError(t, err)
	recorder.events = nil

	count, err := svc.BulkDelete(context.Background(), nil, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, repo.leads, 1)
	assert.Empty(t, recorder.events)
}

func TestListOrderedNewestFirst(t *testing.T) {
	repo := newFakeLeadRepo()
	svc, _ := newTestService(repo, &fakeVerifier{}, nil)

	for i := 0; i < 3; i++ {
		lead, err := svc.Submit(context.Background(), validInput(), "tok", "1.2.3.4")
		require.NoError(t, err)
		// space creations apart so ordering is deterministic
		repo.leads[lead.ID].CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
	}

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 3)
	for i := 1; i < len(leads); i++ {
		assert.True(t, !leads[i-1].CreatedAt.Before(leads[i].CreatedAt))
	}
}
