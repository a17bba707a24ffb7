package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leadrelay/leadrelay/internal/repository"
)

// DashboardStats aggregates an owner's intake activity for the dashboard.
type DashboardStats struct {
	TotalLeads         int64            `json:"total_leads"`
	SuccessfulCRMSaves int64            `json:"successful_crm_saves"`
	FailedCRMSaves     int64            `json:"failed_crm_saves"`
	LeadsPerTime       map[string]int64 `json:"leads_per_time"`
	EventsPerType      map[string]int64 `json:"events_per_type"`
}

// DashboardService computes read-only aggregates over leads, attempts, and events.
type DashboardService struct {
	leads    *repository.LeadRepository
	attempts *repository.AttemptRepository
	events   *repository.EventRepository

	// now is injectable so tests can pin the 24h window.
	now func() time.Time
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(
	leads *repository.LeadRepository,
	attempts *repository.AttemptRepository,
	events *repository.EventRepository,
) *DashboardService {
	return &DashboardService{
		leads:    leads,
		attempts: attempts,
		events:   events,
		now:      time.Now,
	}
}

// Stats returns the dashboard aggregates for one owner: total leads, delivered
// vs undelivered leads judged by each lead's latest attempt, leads per hour
// over the last 24 hours, and event counts per type.
func (s *DashboardService) Stats(ctx context.Context, ownerID string) (*DashboardStats, error) {
	total, err := s.leads.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	delivered, undelivered, err := s.attempts.LatestOutcomeCounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attempt outcomes: %w", err)
	}

	now := s.now().UTC()
	perTime := make(map[string]int64, 24)
	for i := 0; i < 24; i++ {
		hourStart := now.Add(-time.Duration(i+1) * time.Hour)
		hourEnd := now.Add(-time.Duration(i) * time.Hour)
		count, err := s.leads.CountByOwnerBetween(ctx, ownerID, hourStart, hourEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to count leads per hour: %w", err)
		}
		perTime[hourEnd.Format("15:00")] = count
	}

	perType, err := s.events.CountByType(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events per type: %w", err)
	}

	return &DashboardStats{
		TotalLeads:         total,
		SuccessfulCRMSaves: delivered,
		FailedCRMSaves:     undelivered,
		LeadsPerTime:       perTime,
		EventsPerType:      perType,
	}, nil
}
