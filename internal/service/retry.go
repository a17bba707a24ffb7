package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/logger"
)

// Outcome is the terminal result of a retry engine run.
type Outcome string

const (
	// OutcomeDelivered means some attempt succeeded.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeExhausted means the attempt budget ran out without a success.
	OutcomeExhausted Outcome = "exhausted"
)

// RetryPolicy is an immutable snapshot of the retry configuration taken at
// invocation time. Runtime updates only affect subsequent invocations.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// LeadStore is the subset of lead persistence the retry engine needs.
type LeadStore interface {
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
}

// AttemptStore is the subset of the attempt ledger the retry engine needs.
type AttemptStore interface {
	Create(ctx context.Context, attempt *domain.CRMAttempt) error
	CountByLead(ctx context.Context, leadID string) (int64, error)
	HasSuccess(ctx context.Context, leadID string) (bool, error)
}

// RetryEngine drives the delivery gateway under a bounded retry budget and
// records every attempt in the ledger. It is safe to invoke twice for the
// same lead (inline during ingestion and again via the manual retry endpoint)
// because each iteration re-reads the persisted attempt count; the store, not
// in-process state, is the synchronization point.
type RetryEngine struct {
	leads    LeadStore
	attempts AttemptStore
	gateway  DeliveryGateway

	// sleep is injectable so tests can skip the inter-attempt delay.
	sleep func(ctx context.Context, d time.Duration)
}

// NewRetryEngine creates a RetryEngine.
// Parameters:
//   - leads: lead store.
//   - attempts: attempt ledger.
//   - gateway: delivery gateway driven on each attempt.
//
// Returns:
//   - *RetryEngine: initialized engine.
func NewRetryEngine(leads LeadStore, attempts AttemptStore, gateway DeliveryGateway) *RetryEngine {
	return &RetryEngine{
		leads:    leads,
		attempts: attempts,
		gateway:  gateway,
		sleep:    sleepCtx,
	}
}

// SetSleep replaces the inter-attempt delay function. Intended for tests.
func (e *RetryEngine) SetSleep(sleep func(ctx context.Context, d time.Duration)) {
	e.sleep = sleep
}

// Run delivers the lead under the given policy.
//
// Each iteration re-reads the ledger, computes the next 1-based attempt
// number, calls the gateway once, and records the attempt unconditionally.
// A lead with a successful attempt on record returns OutcomeDelivered without
// contacting the gateway, so the ledger never holds more than one success.
// A lead already at the budget returns OutcomeExhausted, likewise without
// contacting the gateway. The first success stops the run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - leadID: lead to deliver.
//   - policy: attempt budget and fixed inter-attempt delay.
//
// Returns:
//   - Outcome: OutcomeDelivered or OutcomeExhausted.
//   - error: non-nil only on ledger or lead store failures.
func (e *RetryEngine) Run(ctx context.Context, leadID string, policy RetryPolicy) (Outcome, error) {
	if policy.MaxAttempts < 1 {
		return OutcomeExhausted, fmt.Errorf("retry policy requires at least one attempt, got %d", policy.MaxAttempts)
	}

	lead, err := e.leads.GetByID(ctx, leadID)
	if err != nil {
		return OutcomeExhausted, fmt.Errorf("failed to load lead %s: %w", leadID, err)
	}

	for {
		delivered, err := e.attempts.HasSuccess(ctx, leadID)
		if err != nil {
			return OutcomeExhausted, fmt.Errorf("failed to check delivery state for lead %s: %w", leadID, err)
		}
		if delivered {
			logger.CtxInfo(ctx, "Lead already delivered, skipping gateway: lead_id=%s", leadID)
			return OutcomeDelivered, nil
		}

		count, err := e.attempts.CountByLead(ctx, leadID)
		if err != nil {
			return OutcomeExhausted, fmt.Errorf("failed to count attempts for lead %s: %w", leadID, err)
		}
		if count >= int64(policy.MaxAttempts) {
			logger.CtxWarn(ctx, "Delivery budget already exhausted: lead_id=%s, attempts=%d, max=%d",
				leadID, count, policy.MaxAttempts)
			return OutcomeExhausted, nil
		}

		attemptNumber := int(count) + 1
		deliverErr := e.gateway.Deliver(ctx, lead)

		attempt := &domain.CRMAttempt{
			ID:            uuid.NewString(),
			LeadID:        leadID,
			Success:       deliverErr == nil,
			AttemptNumber: attemptNumber,
		}
		if deliverErr != nil {
			attempt.ErrorMessage = deliverErr.Error()
		}
		// The ledger write happens regardless of outcome.
		if err := e.attempts.Create(ctx, attempt); err != nil {
			return OutcomeExhausted, fmt.Errorf("failed to record attempt %d for lead %s: %w", attemptNumber, leadID, err)
		}

		if deliverErr == nil {
			logger.With(logger.Fields{logger.FieldAttempt: attemptNumber}).
				Info(ctx, "Lead delivered to CRM: lead_id=%s", leadID)
			return OutcomeDelivered, nil
		}

		logger.With(logger.Fields{logger.FieldAttempt: attemptNumber}).
			Warn(ctx, "CRM delivery failed: lead_id=%s, error=%v", leadID, deliverErr)

		if attemptNumber >= policy.MaxAttempts {
			return OutcomeExhausted, nil
		}

		e.sleep(ctx, policy.Delay)
	}
}

// sleepCtx waits for the delay or context cancellation, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
