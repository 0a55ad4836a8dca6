package domain

import "context"

// Repositories bundles the repositories bound to one database handle or transaction.
type Repositories struct {
	Users    UserRepository
	Speakers SpeakerRepository
	Keywords KeywordRepository
	Events   EventRepository
	Ratings  RatingRepository
}

// UnitOfWork runs fn inside a single transaction. A non-nil error from fn rolls back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}
