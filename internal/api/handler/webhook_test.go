package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/service"
	"gorm.io/gorm"
)

type memEventStore struct{}

func (s *memEventStore) Create(context.Context, *domain.Event) error { return nil }
func (s *memEventStore) UpdateStatus(context.Context, string, domain.EventStatus) error {
	return nil
}

type memLeadStore struct {
	leads     map[string]*domain.Lead
	createErr error
}

func (s *memLeadStore) Create(_ context.Context, lead *domain.Lead) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *memLeadStore) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *memLeadStore) GetByIDForOwner(_ context.Context, ownerID, id string) (*domain.Lead, error) {
	lead, ok := s.leads[id]
	if !ok || lead.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *memLeadStore) Touch(context.Context, string) error { return nil }

type memAttemptStore struct{}

func (s *memAttemptStore) Create(context.Context, *domain.CRMAttempt) error { return nil }
func (s *memAttemptStore) CountByLead(context.Context, string) (int64, error) {
	return 0, nil
}
func (s *memAttemptStore) HasSuccess(context.Context, string) (bool, error) {
	return false, nil
}

type fixedExtractor struct {
	info *domain.LeadInfo
	err  error
}

func (e *fixedExtractor) Extract(context.Context, string) (*domain.LeadInfo, error) {
	return e.info, e.err
}

type fixedGateway struct {
	err error
}

func (g *fixedGateway) Deliver(context.Context, *domain.Lead) error { return g.err }

func newWebhookTestRouter(extractor service.Extractor, leads *memLeadStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := service.NewRetryEngine(leads, &memAttemptStore{}, &fixedGateway{})
	engine.SetSleep(func(context.Context, time.Duration) {})
	svc := service.NewWebhookService(extractor, &memEventStore{}, leads, engine, service.NewSettings(3, 0), nil)
	h := NewWebhookHandler(svc)

	r := gin.New()
	r.POST("/api/v1/webhook", func(c *gin.Context) {
		c.Set("current_user", &domain.User{ID: "user-1", Username: "jane", IsActive: true})
		h.Receive(c)
	})
	return r
}

func postWebhook(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookReceive_ReturnsExtractedLead(t *testing.T) {
	extractor := &fixedExtractor{info: &domain.LeadInfo{Name: "Jane Doe", Email: "jane@acme.com", Company: "Acme Corp"}}
	r := newWebhookTestRouter(extractor, &memLeadStore{leads: map[string]*domain.Lead{}})

	w := postWebhook(t, r, `{"message": "Hi, I'm Jane Doe from Acme Corp, jane@acme.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The body is the extracted record itself, not a wrapper around it.
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"name", "email", "company"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected top-level %q field, body: %s", key, w.Body.String())
		}
	}
	if _, ok := got["lead"]; ok {
		t.Errorf("expected no envelope around the record, body: %s", w.Body.String())
	}
	if got["name"] != "Jane Doe" {
		t.Errorf("expected name %q, got %v", "Jane Doe", got["name"])
	}
}

func TestWebhookReceive_ExtractionFailureBody(t *testing.T) {
	extractor := &fixedExtractor{err: errors.New("malformed input")}
	r := newWebhookTestRouter(extractor, &memLeadStore{leads: map[string]*domain.Lead{}})

	w := postWebhook(t, r, `{"message": "???"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var got struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(got.Error, "malformed input") {
		t.Errorf("expected underlying detail in error, got %q", got.Error)
	}
	if strings.Count(strings.ToLower(got.Error), "failed to extract lead") != 1 {
		t.Errorf("expected a single extraction prefix, got %q", got.Error)
	}
}

func TestWebhookReceive_PipelineFailureBody(t *testing.T) {
	extractor := &fixedExtractor{info: &domain.LeadInfo{Name: "Jane Doe", Email: "jane@acme.com", Company: "Acme Corp"}}
	leads := &memLeadStore{leads: map[string]*domain.Lead{}, createErr: errors.New("disk full")}
	r := newWebhookTestRouter(extractor, leads)

	w := postWebhook(t, r, `{"message": "Hi, I'm Jane Doe"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var got struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(got.Error, "disk full") {
		t.Errorf("expected underlying detail in error, got %q", got.Error)
	}
}
