// Package domain contains core types for the auth service.
package domain

import "time"

// User represents a system user account.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null"`
	FullName     string    `gorm:"column:full_name;type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               int64      `gorm:"primaryKey"`
	UserID           int64      `gorm:"column:user_id;not null;index"`
	SessionTokenHash string     `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string     `gorm:"column:user_agent;type:text"`
	IPAddress        string     `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time  `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
