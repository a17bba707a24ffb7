package domain

import "time"

// CRMAttempt records a single delivery attempt of a lead to the CRM.
// Attempt numbers for a lead form a contiguous 1-based sequence; at most one
// attempt per lead has Success=true and it is always the last one recorded.
type CRMAttempt struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	LeadID        string    `gorm:"type:text;not null;index:idx_crm_attempts_lead" json:"lead_id"`
	Success       bool      `gorm:"not null" json:"success"`
	AttemptNumber int       `gorm:"not null" json:"attempt_number"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name for CRMAttempt.
func (CRMAttempt) TableName() string {
	return "crm_attempts"
}
