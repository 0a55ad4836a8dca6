package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"speakerhub/internal/domain"
)

// Store hands out repositories on the shared pool and runs units of work on a transaction.
type Store struct {
	DB *sql.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Repositories returns repositories that run directly on the pool.
func (s *Store) Repositories() domain.Repositories {
	return newRepositories(s.DB)
}

// Do runs fn inside one transaction. It commits when fn returns nil and rolls back otherwise.
func (s *Store) Do(ctx context.Context, fn func(repos domain.Repositories) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(newRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newRepositories(db DBTX) domain.Repositories {
	return domain.Repositories{
		Users:    NewUserRepository(db),
		Speakers: NewSpeakerRepository(db),
		Keywords: NewKeywordRepository(db),
		Events:   NewEventRepository(db),
		Ratings:  NewRatingRepository(db),
	}
}
