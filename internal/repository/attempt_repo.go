package repository

import (
	"context"

	"github.com/leadrelay/leadrelay/internal/domain"
	"gorm.io/gorm"
)

// AttemptRepository handles the per-lead delivery attempt ledger.
type AttemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new AttemptRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *AttemptRepository: repository instance bound to db.
func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create appends an attempt record to the ledger.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - attempt: attempt record to persist.
//
// Returns:
//   - error: non-nil if the insert fails.
func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.CRMAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

// CountByLead returns the number of attempts recorded for a lead. The retry
// engine re-reads this on every iteration instead of trusting a local counter,
// so a manual retry running concurrently cannot push a lead past its budget.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - leadID: lead record ID.
//
// Returns:
//   - int64: number of attempts recorded so far.
//   - error: non-nil if the query fails.
func (r *AttemptRepository) CountByLead(ctx context.Context, leadID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.CRMAttempt{}).
		Where("lead_id = ?", leadID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasSuccess reports whether the lead already has a successful attempt on
// record. The retry engine consults this before contacting the gateway so a
// manual retry of a delivered lead is a no-op instead of a second delivery.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - leadID: lead record ID.
//
// Returns:
//   - bool: true if at least one successful attempt exists.
//   - error: non-nil if the query fails.
func (r *AttemptRepository) HasSuccess(ctx context.Context, leadID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.CRMAttempt{}).
		Where("lead_id = ? AND success = ?", leadID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByLead retrieves all attempts for a lead in attempt order.
func (r *AttemptRepository) ListByLead(ctx context.Context, leadID string) ([]domain.CRMAttempt, error) {
	var attempts []domain.CRMAttempt
	if err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// LatestOutcomeCounts returns how many of an owner's leads ended their attempt
// history in a delivered vs undelivered state, judged by each lead's
// highest-numbered attempt.
func (r *AttemptRepository) LatestOutcomeCounts(ctx context.Context, ownerID string) (delivered, undelivered int64, err error) {
	var rows []struct {
		Success bool
		Count   int64
	}
	err = r.db.WithContext(ctx).Raw(`
		WITH latest_attempts AS (
			SELECT lead_id, MAX(attempt_number) AS max_attempt
			FROM crm_attempts
			GROUP BY lead_id
		)
		SELECT ca.success, COUNT(*) AS count
		FROM crm_attempts ca
		JOIN latest_attempts la ON ca.lead_id = la.lead_id AND ca.attempt_number = la.max_attempt
		JOIN leads l ON l.id = ca.lead_id
		WHERE l.owner_id = ?
		GROUP BY ca.success`, ownerID).Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, row := range rows {
		if row.Success {
			delivered = row.Count
		} else {
			undelivered = row.Count
		}
	}
	return delivered, undelivered, nil
}
