package domain

import "time"

// Sentinel values used when extraction cannot find a field. The extractor
// always returns all three fields populated, so these mark "not found" rather
// than an absent column.
const (
	UnknownName    = "Unknown"
	UnknownCompany = "Unknown"
	UnknownEmail   = "unknown@example.com"
)

// LeadInfo is the structured contact record produced by extraction and
// returned to webhook callers. All fields are always non-empty.
type LeadInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// Lead is a persisted structured contact extracted from an inbound message.
// Immutable after creation except for UpdatedAt, which is touched when a
// manual retry re-delivers the record.
type Lead struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Name       string    `gorm:"type:text;not null" json:"name"`
	Email      string    `gorm:"type:text;not null" json:"email"`
	Company    string    `gorm:"type:text;not null" json:"company"`
	RawMessage string    `gorm:"type:text" json:"raw_message"`
	OwnerID    string    `gorm:"type:text;not null;index:idx_leads_owner" json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Attempts []CRMAttempt `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"attempts,omitempty"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string {
	return "leads"
}

// Info returns the extracted fields of the lead.
func (l *Lead) Info() LeadInfo {
	return LeadInfo{Name: l.Name, Email: l.Email, Company: l.Company}
}
