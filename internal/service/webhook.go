package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/logger"
	"gorm.io/gorm"
)

// ErrLeadNotFound is returned when a lead does not exist in the caller's scope.
var ErrLeadNotFound = errors.New("lead not found")

// ExtractionError marks a client-visible extraction failure. Handlers map it
// to a 400-class response; every other pipeline error is 500-class.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract lead: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EventStore is the subset of the event ledger the pipeline needs.
type EventStore interface {
	Create(ctx context.Context, event *domain.Event) error
	UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error
}

// PipelineLeadStore is the lead persistence surface of the pipeline.
type PipelineLeadStore interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetByIDForOwner(ctx context.Context, ownerID, id string) (*domain.Lead, error)
	Touch(ctx context.Context, id string) error
}

// PayloadArchiver stores raw inbound payloads out-of-band. Archival is
// best-effort; failures never fail the pipeline.
type PayloadArchiver interface {
	Archive(ctx context.Context, key, payload string) error
}

// WebhookService composes the extractor, lead store, retry engine, and event
// ledger into the per-request intake pipeline.
type WebhookService struct {
	extractor Extractor
	events    EventStore
	leads     PipelineLeadStore
	retry     *RetryEngine
	settings  *Settings
	archive   PayloadArchiver // nil when archival is disabled
}

// NewWebhookService creates a WebhookService.
// Parameters:
//   - extractor: extraction strategy composite.
//   - events: event ledger.
//   - leads: lead store.
//   - retry: delivery retry engine.
//   - settings: runtime retry configuration.
//   - archive: optional payload archiver, may be nil.
//
// Returns:
//   - *WebhookService: initialized pipeline.
func NewWebhookService(
	extractor Extractor,
	events EventStore,
	leads PipelineLeadStore,
	retry *RetryEngine,
	settings *Settings,
	archive PayloadArchiver,
) *WebhookService {
	return &WebhookService{
		extractor: extractor,
		events:    events,
		leads:     leads,
		retry:     retry,
		settings:  settings,
		archive:   archive,
	}
}

// ProcessMessage runs the intake pipeline for one inbound message.
//
// An event is created in "processing" before anything else, and a deferred
// finalizer guarantees it reaches exactly one terminal status on every exit
// path, panics included. Delivery exhaustion is not an error: the lead is
// persisted, the event becomes "partial_success", and the caller still gets
// the extracted record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: authenticated owner of the request.
//   - message: raw inbound message text.
//
// Returns:
//   - *domain.LeadInfo: extracted record, nil on error.
//   - error: *ExtractionError for extraction failures, otherwise wrapped
//     persistence/delivery errors.
func (s *WebhookService) ProcessMessage(ctx context.Context, ownerID, message string) (*domain.LeadInfo, error) {
	event := &domain.Event{
		ID:             uuid.NewString(),
		EventType:      domain.EventTypeWebhook,
		IdempotencyKey: uuid.NewString(),
		OwnerID:        ownerID,
		Payload:        message,
		Status:         domain.EventStatusProcessing,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	ctx = logger.SetEventID(ctx, event.IdempotencyKey)

	if s.archive != nil {
		if err := s.archive.Archive(ctx, event.IdempotencyKey, message); err != nil {
			logger.CtxWarn(ctx, "Failed to archive payload: error=%v", err)
		}
	}

	finalStatus := domain.EventStatusFailed
	defer func() {
		// Status write survives request cancellation; the event must never be
		// left in "processing".
		if err := s.events.UpdateStatus(context.WithoutCancel(ctx), event.ID, finalStatus); err != nil {
			logger.CtxError(ctx, "Failed to finalize event: status=%s, error=%v", finalStatus, err)
		}
	}()

	info, err := s.extractor.Extract(ctx, message)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}

	lead := &domain.Lead{
		ID:         uuid.NewString(),
		Name:       info.Name,
		Email:      info.Email,
		Company:    info.Company,
		RawMessage: message,
		OwnerID:    ownerID,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to persist lead: %w", err)
	}
	ctx = logger.SetLeadID(ctx, lead.ID)

	outcome, err := s.retry.Run(ctx, lead.ID, s.settings.Policy())
	if err != nil {
		return nil, fmt.Errorf("delivery run failed: %w", err)
	}

	if outcome == OutcomeDelivered {
		finalStatus = domain.EventStatusSuccess
	} else {
		finalStatus = domain.EventStatusPartialSuccess
		logger.CtxWarn(ctx, "Lead saved but CRM delivery exhausted its budget")
	}

	return info, nil
}

// RetryDelivery re-invokes the retry engine for an existing lead, out-of-band
// from ingestion. Numbering resumes from the persisted ledger, so the combined
// attempt count never exceeds the budget.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: calling user; leads outside this scope report ErrLeadNotFound.
//   - leadID: lead to re-deliver.
//
// Returns:
//   - *domain.Lead: refreshed lead with its attempt history.
//   - Outcome: result of the run.
//   - error: ErrLeadNotFound or wrapped store/engine failures.
func (s *WebhookService) RetryDelivery(ctx context.Context, ownerID, leadID string) (*domain.Lead, Outcome, error) {
	if _, err := s.leads.GetByIDForOwner(ctx, ownerID, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrLeadNotFound
		}
		return nil, "", fmt.Errorf("failed to load lead: %w", err)
	}
	ctx = logger.SetLeadID(ctx, leadID)

	outcome, err := s.retry.Run(ctx, leadID, s.settings.Policy())
	if err != nil {
		return nil, "", fmt.Errorf("delivery run failed: %w", err)
	}

	if outcome == OutcomeDelivered {
		if err := s.leads.Touch(ctx, leadID); err != nil {
			logger.CtxWarn(ctx, "Failed to update lead timestamp: error=%v", err)
		}
	}

	lead, err := s.leads.GetByIDForOwner(ctx, ownerID, leadID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to reload lead: %w", err)
	}
	return lead, outcome, nil
}
