package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leadrelay/leadrelay/internal/domain"
)

// DeliveryGateway is the boundary to the external CRM system. It performs a
// single delivery with no retry logic of its own; the retry engine owns the
// budget. Implementations may be a live HTTP client or a deterministic stub.
type DeliveryGateway interface {
	Deliver(ctx context.Context, lead *domain.Lead) error
}

// SimulatedGateway fakes the CRM call with a configurable success rate.
// The random source is injectable so tests can force either outcome.
type SimulatedGateway struct {
	successRate float64

	mu   sync.Mutex
	roll func() float64
}

// NewSimulatedGateway creates a SimulatedGateway.
// Parameters:
//   - successRate: probability in [0,1] that a delivery succeeds.
//
// Returns:
//   - *SimulatedGateway: initialized gateway.
func NewSimulatedGateway(successRate float64) *SimulatedGateway {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &SimulatedGateway{
		successRate: successRate,
		roll:        rng.Float64,
	}
}

// SetRoll replaces the random source. Intended for tests.
func (g *SimulatedGateway) SetRoll(roll func() float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roll = roll
}

// Deliver pretends to push the lead to the CRM.
func (g *SimulatedGateway) Deliver(_ context.Context, _ *domain.Lead) error {
	g.mu.Lock()
	v := g.roll()
	g.mu.Unlock()

	if v >= g.successRate {
		return fmt.Errorf("CRM API call failed (simulated failure)")
	}
	return nil
}

// HTTPGatewayConfig holds configuration for the live CRM gateway.
type HTTPGatewayConfig struct {
	Endpoint string
	APIKey   string
}

// HTTPGateway delivers leads to a real CRM endpoint over HTTP.
type HTTPGateway struct {
	client   *resty.Client
	endpoint string
}

// NewHTTPGateway creates an HTTPGateway.
func NewHTTPGateway(cfg *HTTPGatewayConfig) *HTTPGateway {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	client.SetTimeout(15 * time.Second)

	return &HTTPGateway{
		client:   client,
		endpoint: cfg.Endpoint,
	}
}

type crmLeadPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Source  string `json:"source"`
}

// Deliver posts the lead to the configured CRM endpoint. Any non-2xx status
// is a failed attempt.
func (g *HTTPGateway) Deliver(ctx context.Context, lead *domain.Lead) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(crmLeadPayload{
			Name:    lead.Name,
			Email:   lead.Email,
			Company: lead.Company,
			Source:  "leadrelay",
		}).
		Post(g.endpoint)

	if err != nil {
		return fmt.Errorf("failed to call CRM API: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("CRM API returned HTTP %d", resp.StatusCode())
	}
	return nil
}
