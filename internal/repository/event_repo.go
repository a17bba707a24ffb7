package repository

import (
	"context"
	"fmt"

	"github.com/leadrelay/leadrelay/internal/domain"
	"gorm.io/gorm"
)

// EventRepository handles the append-only event ledger.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *EventRepository: repository instance bound to db.
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event record. The unique index on the idempotency key
// rejects a second event for the same logical request.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - event: event record to persist.
//
// Returns:
//   - error: non-nil if the insert fails, including duplicate idempotency keys.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// UpdateStatus moves an event from processing to a terminal status. It is the
// only mutation allowed after creation; events already finalized are left
// untouched so terminal statuses stay immutable.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: event record ID.
//   - status: terminal status to set.
//
// Returns:
//   - error: non-nil if the update fails or the status is not terminal.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("event status %q is not terminal", status)
	}
	return r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ? AND status = ?", id, domain.EventStatusProcessing).
		Update("status", status).Error
}

// GetByIdempotencyKey retrieves an event by its idempotency key, scoped to an owner.
func (r *EventRepository) GetByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Event, error) {
	var event domain.Event
	if err := r.db.WithContext(ctx).
		First(&event, "idempotency_key = ? AND owner_id = ?", key, ownerID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByOwner retrieves events for an owner ordered by creation time descending.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning user ID.
//   - limit: maximum number of records.
//   - offset: number of records to skip.
//
// Returns:
//   - []domain.Event: matching events.
//   - error: non-nil if the query fails.
func (r *EventRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Event, error) {
	var events []domain.Event
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByType returns the number of events per event type for an owner.
func (r *EventRepository) CountByType(ctx context.Context, ownerID string) (map[string]int64, error) {
	var rows []struct {
		EventType string
		Count     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Select("event_type, COUNT(*) as count").
		Where("owner_id = ?", ownerID).
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventType] = row.Count
	}
	return counts, nil
}
