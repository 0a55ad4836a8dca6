package domain

import (
	"context"
	"math"
	"time"
)

// Score bounds for a rating.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Rating is one score given to a speaker for one concluded event.
// swagger:model Rating
type Rating struct {
	ID        string    `json:"id"`
	SpeakerID string    `json:"speaker_id"`
	EventID   string    `json:"event_id"`
	Score     float64   `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingStats aggregates the ratings of a speaker or an event.
type RatingStats struct {
	Average float64
	Count   int
}

// RoundRating rounds an average to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// RateInput identifies the rating to record.
type RateInput struct {
	EventID   string
	SpeakerID string
	Score     float64
	Comment   string
}

// RatingRepository defines the interface for rating storage
type RatingRepository interface {
	// Upsert inserts or replaces the rating for (speaker, event). created is false on replace.
	Upsert(ctx context.Context, r *Rating) (created bool, err error)
	ListByEvent(ctx context.Context, eventID string) ([]*Rating, error)
	SpeakerIDsByEvent(ctx context.Context, eventID string) ([]string, error)
	EventIDsBySpeaker(ctx context.Context, speakerID string) ([]string, error)
	DeleteByEvent(ctx context.Context, eventID string) error
	DeleteBySpeaker(ctx context.Context, speakerID string) error
	SpeakerStats(ctx context.Context, speakerID string) (RatingStats, error)
	EventStats(ctx context.Context, eventID string) (RatingStats, error)
}

// RatingService records ratings and keeps the derived averages current.
type RatingService interface {
	Rate(ctx context.Context, in RateInput) (rating *Rating, created bool, err error)
	ListByEvent(ctx context.Context, eventID string) ([]*Rating, error)
}
