package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"speakerhub/internal/domain"
)

const maxCommentLen = 1000

type ratingService struct {
	store          domain.UnitOfWork
	repos          domain.Repositories
	contextTimeout time.Duration
	now            func() time.Time
}

func NewRatingService(store domain.UnitOfWork, repos domain.Repositories, timeout time.Duration) domain.RatingService {
	return &ratingService{
		store:          store,
		repos:          repos,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// Rate records or replaces the speaker's score for a concluded event and refreshes both averages.
// Checks run in order: existence, association, conclusion, then score bounds.
func (s *ratingService) Rate(ctx context.Context, in domain.RateInput) (*domain.Rating, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		rating  *domain.Rating
		created bool
	)
	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		event, err := repos.Events.GetByID(ctx, in.EventID)
		if err != nil {
			return fmt.Errorf("event: %w", err)
		}
		if _, err := repos.Speakers.GetByID(ctx, in.SpeakerID); err != nil {
			return fmt.Errorf("speaker: %w", err)
		}
		linked, err := repos.Events.IsSpeakerLinked(ctx, in.EventID, in.SpeakerID)
		if err != nil {
			return err
		}
		if !linked {
			return domain.ErrNotAssociated
		}
		now := s.now()
		if !event.Concluded(now) {
			return domain.ErrEventNotConcluded
		}
		if err := validateScore(in.Score, in.Comment); err != nil {
			return err
		}

		rating = &domain.Rating{
			SpeakerID: in.SpeakerID,
			EventID:   in.EventID,
			Score:     in.Score,
			Comment:   strings.TrimSpace(in.Comment),
			CreatedAt: now,
			UpdatedAt: now,
		}
		created, err = repos.Ratings.Upsert(ctx, rating)
		if err != nil {
			return err
		}
		if err := refreshSpeakerAverage(ctx, repos, in.SpeakerID); err != nil {
			return err
		}
		return refreshEventStats(ctx, repos, in.EventID)
	})
	if err != nil {
		return nil, false, fmt.Errorf("rate speaker: %w", err)
	}
	return rating, created, nil
}

func (s *ratingService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.repos.Events.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	ratings, err := s.repos.Ratings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func validateScore(score float64, comment string) error {
	v := domain.NewValidationError()
	if math.IsNaN(score) || score < domain.MinScore || score > domain.MaxScore {
		v.Add("score", fmt.Sprintf("must be between %g and %g", domain.MinScore, domain.MaxScore))
	}
	checkLength(v, "comment", strings.TrimSpace(comment), 0, maxCommentLen)
	return v.OrNil()
}

func refreshSpeakerAverage(ctx context.Context, repos domain.Repositories, speakerID string) error {
	stats, err := repos.Ratings.SpeakerStats(ctx, speakerID)
	if err != nil {
		return err
	}
	return repos.Speakers.SetAverageRating(ctx, speakerID, domain.RoundRating(stats.Average))
}
