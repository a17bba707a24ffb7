package repository

import (
	"context"
	"time"

	"github.com/leadrelay/leadrelay/internal/domain"
	"gorm.io/gorm"
)

// LeadRepository handles persisted lead records.
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *LeadRepository: repository instance bound to db.
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - lead: lead record to persist.
//
// Returns:
//   - error: non-nil if the insert fails.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// GetByID retrieves a lead by its ID.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetByIDForOwner retrieves a lead by ID scoped to an owner, with its attempt
// history preloaded in attempt order.
func (r *LeadRepository) GetByIDForOwner(ctx context.Context, ownerID, id string) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.db.WithContext(ctx).
		Preload("Attempts", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_number ASC")
		}).
		First(&lead, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListByOwner retrieves leads for an owner ordered by creation time descending.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ownerID: owning user ID.
//   - limit: maximum number of records.
//   - offset: number of records to skip.
//
// Returns:
//   - []domain.Lead: matching leads.
//   - error: non-nil if the query fails.
func (r *LeadRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]domain.Lead, error) {
	var leads []domain.Lead
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// Touch updates the lead's UpdatedAt timestamp after a re-delivery.
func (r *LeadRepository) Touch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

// CountByOwner returns the total number of leads for an owner.
func (r *LeadRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByOwnerBetween returns the number of leads created in [from, to).
func (r *LeadRepository) CountByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("owner_id = ? AND created_at >= ? AND created_at < ?", ownerID, from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
