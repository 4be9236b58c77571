package store

import (
	"errors"
	"strings"
	"time"

	"rental-service/internal/model"
	"rental-service/prometheus"

	"gorm.io/gorm"
)

// AuthenticateAdmin returns the administrator for valid credentials.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *Store) AuthenticateAdmin(username, password string) (*model.Admin, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var admin model.Admin
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &admin, nil
}

// CreateAdmin adds a new administrator account
func (s *Store) CreateAdmin(username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	fields := fieldErrors{}
	if username == "" {
		fields.add("username", "is required")
	}
	if password == "" {
		fields.add("password", "is required")
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	admin := model.Admin{Username: username}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Admin{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(&admin).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// SetAdminPassword replaces the password of an existing administrator
func (s *Store) SetAdminPassword(username, password string) error {
	if password == "" {
		return &ValidationError{Fields: map[string]string{"password": "is required"}}
	}

	var admin model.Admin
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&admin).Error; err != nil {
		return notFound(err)
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	return s.db.Model(&admin).Update("password_hash", admin.PasswordHash).Error
}

// EnsureAdmin creates the administrator when no account with that username exists.
// An existing account keeps its password.
func (s *Store) EnsureAdmin(username, password string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.Admin{}).Where("username = ?", strings.TrimSpace(username)).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.CreateAdmin(username, password); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
