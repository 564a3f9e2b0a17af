package models

import "time"

// SessionToken is the durable copy of the session token. The store holds a single row.
type SessionToken struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	Value     string    `gorm:"not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the SessionToken model
func (SessionToken) TableName() string {
	return "session_tokens"
}
