package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leadrelay/leadrelay/internal/domain"
	"gorm.io/gorm"
)

// fakeEventStore records status transitions per event.
type fakeEventStore struct {
	created  []*domain.Event
	statuses map[string][]domain.EventStatus
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{statuses: map[string][]domain.EventStatus{}}
}

func (s *fakeEventStore) Create(_ context.Context, event *domain.Event) error {
	s.created = append(s.created, event)
	return nil
}

func (s *fakeEventStore) UpdateStatus(_ context.Context, id string, status domain.EventStatus) error {
	s.statuses[id] = append(s.statuses[id], status)
	return nil
}

func (s *fakeEventStore) finalStatus(t *testing.T) domain.EventStatus {
	t.Helper()
	if len(s.created) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(s.created))
	}
	transitions := s.statuses[s.created[0].ID]
	if len(transitions) != 1 {
		t.Fatalf("expected exactly 1 terminal transition, got %v", transitions)
	}
	return transitions[0]
}

// fakePipelineLeadStore implements PipelineLeadStore and LeadStore in memory.
type fakePipelineLeadStore struct {
	leads     map[string]*domain.Lead
	createErr error
	touched   []string
}

func newFakePipelineLeadStore() *fakePipelineLeadStore {
	return &fakePipelineLeadStore{leads: map[string]*domain.Lead{}}
}

func (s *fakePipelineLeadStore) Create(_ context.Context, lead *domain.Lead) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *fakePipelineLeadStore) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *fakePipelineLeadStore) GetByIDForOwner(_ context.Context, ownerID, id string) (*domain.Lead, error) {
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *fakePipelineLeadStore) Touch(_ context.Context, id string) error {
	s.touched = append(s.touched, id)
	return nil
}

type pipelineFixture struct {
	svc    *WebhookService
	events *fakeEventStore
	leads  *fakePipelineLeadStore
	ledger *fakeAttemptStore
}

func newPipelineFixture(extractor Extractor, gateway DeliveryGateway) *pipelineFixture {
	events := newFakeEventStore()
	leads := newFakePipelineLeadStore()
	ledger := &fakeAttemptStore{}

	engine := NewRetryEngine(leads, ledger, gateway)
	engine.SetSleep(func(context.Context, time.Duration) {})

	settings := NewSettings(3, 0)
	return &pipelineFixture{
		svc:    NewWebhookService(extractor, events, leads, engine, settings, nil),
		events: events,
		leads:  leads,
		ledger: ledger,
	}
}

func TestWebhookService_DeliveredMessage(t *testing.T) {
	extractor := &stubExtractor{info: &domain.LeadInfo{Name: "Jane Doe", Email: "jane@acme.com", Company: "Acme Corp"}}
	f := newPipelineFixture(extractor, &scriptedGateway{results: []error{nil}})

	info, err := f.svc.ProcessMessage(context.Background(), "user-1", "Hi, I'm Jane Doe from Acme Corp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "Jane Doe" {
		t.Errorf("expected extracted name returned, got %q", info.Name)
	}

	if got := f.events.finalStatus(t); got != domain.EventStatusSuccess {
		t.Errorf("expected event status %q, got %q", domain.EventStatusSuccess, got)
	}
	if len(f.leads.leads) != 1 {
		t.Errorf("expected 1 stored lead, got %d", len(f.leads.leads))
	}
	if len(f.ledger.attempts) != 1 {
		t.Errorf("expected 1 delivery attempt, got %d", len(f.ledger.attempts))
	}

	event := f.events.created[0]
	if event.Status != domain.EventStatusProcessing {
		t.Errorf("expected event created in processing, got %q", event.Status)
	}
	if event.OwnerID != "user-1" {
		t.Errorf("expected event owned by caller, got %q", event.OwnerID)
	}
	if event.IdempotencyKey == "" {
		t.Error("expected idempotency key assigned")
	}
}

func TestWebhookService_ExhaustedDeliveryIsPartialSuccess(t *testing.T) {
	extractor := &stubExtractor{info: &domain.LeadInfo{Name: "Jane Doe", Email: "jane@acme.com", Company: "Acme Corp"}}
	f := newPipelineFixture(extractor, &scriptedGateway{results: []error{errors.New("CRM down")}})

	info, err := f.svc.ProcessMessage(context.Background(), "user-1", "Hi, I'm Jane Doe from Acme Corp")
	if err != nil {
		t.Fatalf("exhausted delivery must not surface as an error, got: %v", err)
	}
	if info == nil {
		t.Fatal("expected extracted record despite failed delivery")
	}

	if got := f.events.finalStatus(t); got != domain.EventStatusPartialSuccess {
		t.Errorf("expected event status %q, got %q", domain.EventStatusPartialSuccess, got)
	}
	// Lead stays stored, all attempts on record.
	if len(f.leads.leads) != 1 {
		t.Errorf("expected lead kept, got %d leads", len(f.leads.leads))
	}
	if len(f.ledger.attempts) != 3 {
		t.Errorf("expected full attempt budget recorded, got %d", len(f.ledger.attempts))
	}
}

func TestWebhookService_ExtractionFailureIsClientError(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("malformed input")}
	f := newPipelineFixture(extractor, &scriptedGateway{results: []error{nil}})

	_, err := f.svc.ProcessMessage(context.Background(), "user-1", "???")
	if err == nil {
		t.Fatal("expected error")
	}
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected *ExtractionError, got %T", err)
	}

	if got := f.events.finalStatus(t); got != domain.EventStatusFailed {
		t.Errorf("expected event status %q, got %q", domain.EventStatusFailed, got)
	}
	if len(f.leads.leads) != 0 {
		t.Errorf("expected no lead stored, got %d", len(f.leads.leads))
	}
}

func TestWebhookService_PersistenceFailureFinalizesEvent(t *testing.T) {
	extractor := &stubExtractor{info: &domain.LeadInfo{Name: "Jane Doe", Email: "jane@acme.com", Company: "Acme Corp"}}
	f := newPipelineFixture(extractor, &scriptedGateway{results: []error{nil}})
	f.leads.createErr = errors.New("disk full")

	_, err := f.svc.ProcessMessage(context.Background(), "user-1", "Hi, I'm Jane Doe")
	if err == nil {
		t.Fatal("expected error")
	}
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		t.Error("persistence failure must not be an extraction error")
	}

	// The event must never be left in processing.
	if got := f.events.finalStatus(t); got != domain.EventStatusFailed {
		t.Errorf("expected event status %q, got %q", domain.EventStatusFailed, got)
	}
}

func TestWebhookService_RetryDelivery(t *testing.T) {
	extractor := &stubExtractor{info: &domain.LeadInfo{Name: "Jane Doe", Email: "jane@acme.com", Company: "Acme Corp"}}

	t.Run("delivers and touches lead", func(t *testing.T) {
		f := newPipelineFixture(extractor, &scriptedGateway{results: []error{nil}})
		f.leads.leads["lead-1"] = &domain.Lead{ID: "lead-1", OwnerID: "user-1"}

		lead, outcome, err := f.svc.RetryDelivery(context.Background(), "user-1", "lead-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != OutcomeDelivered {
			t.Errorf("expected outcome %q, got %q", OutcomeDelivered, outcome)
		}
		if lead == nil || lead.ID != "lead-1" {
			t.Errorf("expected refreshed lead, got %+v", lead)
		}
		if len(f.leads.touched) != 1 {
			t.Errorf("expected lead timestamp touched once, got %d", len(f.leads.touched))
		}
	})

	t.Run("already delivered lead is a no-op", func(t *testing.T) {
		gateway := &scriptedGateway{results: []error{nil}}
		f := newPipelineFixture(extractor, gateway)
		f.leads.leads["lead-1"] = &domain.Lead{ID: "lead-1", OwnerID: "user-1"}
		f.ledger.attempts = []*domain.CRMAttempt{
			{LeadID: "lead-1", AttemptNumber: 1, Success: true},
		}

		_, outcome, err := f.svc.RetryDelivery(context.Background(), "user-1", "lead-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != OutcomeDelivered {
			t.Errorf("expected outcome %q, got %q", OutcomeDelivered, outcome)
		}
		if gateway.calls != 0 {
			t.Errorf("expected no gateway calls for a delivered lead, got %d", gateway.calls)
		}
		if len(f.ledger.attempts) != 1 {
			t.Errorf("expected ledger untouched, got %d attempts", len(f.ledger.attempts))
		}
	})

	t.Run("exhausted budget reported without error", func(t *testing.T) {
		f := newPipelineFixture(extractor, &scriptedGateway{results: []error{errors.New("CRM down")}})
		f.leads.leads["lead-1"] = &domain.Lead{ID: "lead-1", OwnerID: "user-1"}

		_, outcome, err := f.svc.RetryDelivery(context.Background(), "user-1", "lead-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome != OutcomeExhausted {
			t.Errorf("expected outcome %q, got %q", OutcomeExhausted, outcome)
		}
		if len(f.leads.touched) != 0 {
			t.Error("failed delivery must not touch the lead timestamp")
		}
	})

	t.Run("unknown lead", func(t *testing.T) {
		f := newPipelineFixture(extractor, &scriptedGateway{results: []error{nil}})

		_, _, err := f.svc.RetryDelivery(context.Background(), "user-1", "missing")
		if !errors.Is(err, ErrLeadNotFound) {
			t.Errorf("expected ErrLeadNotFound, got %v", err)
		}
	})

	t.Run("lead of another owner is invisible", func(t *testing.T) {
		f := newPipelineFixture(extractor, &scriptedGateway{results: []error{nil}})
		f.leads.leads["lead-1"] = &domain.Lead{ID: "lead-1", OwnerID: "someone-else"}

		_, _, err := f.svc.RetryDelivery(context.Background(), "user-1", "lead-1")
		if !errors.Is(err, ErrLeadNotFound) {
			t.Errorf("expected ErrLeadNotFound, got %v", err)
		}
	})
}
