package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store is the entity store for tenants, administrators, payments and complaints
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open, migrated database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithContext returns a Store whose queries are bound to ctx
func (s *Store) WithContext(ctx context.Context) *Store {
	return &Store{db: s.db.WithContext(ctx)}
}

// DB exposes the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
