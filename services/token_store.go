package services

import (
	"errors"
	"fmt"

	"github.com/kendall-kelly/techsupport-client/models"
	"gorm.io/gorm"
)

// tokenRowName is the single key the session token is stored under
const tokenRowName = "token"

// TokenStore persists the session token across restarts
type TokenStore interface {
	// Load returns the persisted token, or "" when logged out
	Load() (string, error)
	// Save replaces the persisted token
	Save(token string) error
	// Clear removes the persisted token
	Clear() error
}

// GormTokenStore implements TokenStore on top of a gorm database (sqlite or postgres)
type GormTokenStore struct {
	db *gorm.DB
}

// NewGormTokenStore creates a token store and migrates its table
func NewGormTokenStore(db *gorm.DB) (*GormTokenStore, error) {
	if err := db.AutoMigrate(&models.SessionToken{}); err != nil {
		return nil, fmt.Errorf("failed to migrate token store: %w", err)
	}
	return &GormTokenStore{db: db}, nil
}

// Load returns the persisted token
func (s *GormTokenStore) Load() (string, error) {
	var row models.SessionToken
	err := s.db.Where("name = ?", tokenRowName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session token: %w", err)
	}
	return row.Value, nil
}

// Save upserts the token row
func (s *GormTokenStore) Save(token string) error {
	row := models.SessionToken{Name: tokenRowName, Value: token}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

// Clear deletes the token row
func (s *GormTokenStore) Clear() error {
	if err := s.db.Delete(&models.SessionToken{Name: tokenRowName}).Error; err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
