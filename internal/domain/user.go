package domain

import "time"

// User is an account that owns leads and events. Passwords are stored as
// bcrypt hashes and never serialized.
type User struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	Username       string    `gorm:"type:text;not null;uniqueIndex:idx_users_username" json:"username"`
	Email          string    `gorm:"type:text;not null;uniqueIndex:idx_users_email" json:"email"`
	HashedPassword string    `gorm:"type:text;not null" json:"-"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string {
	return "users"
}
