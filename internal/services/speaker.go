package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakerhub/internal/domain"
)

type speakerService struct {
	store          domain.UnitOfWork
	repos          domain.Repositories
	contextTimeout time.Duration
	now            func() time.Time
}

// NewSpeakerService creates a SpeakerService. Reads go through repos, writes run inside store.
func NewSpeakerService(store domain.UnitOfWork, repos domain.Repositories, timeout time.Duration) domain.SpeakerService {
	return &speakerService{
		store:          store,
		repos:          repos,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func normalizeSpeakerInput(in domain.SpeakerInput) domain.SpeakerInput {
	return domain.SpeakerInput{
		Name:       strings.TrimSpace(in.Name),
		Email:      normalizeEmail(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Bio:        strings.TrimSpace(in.Bio),
		PhotoURL:   strings.TrimSpace(in.PhotoURL),
		ProfileURL: strings.TrimSpace(in.ProfileURL),
		KeywordIDs: uniqueIDs(in.KeywordIDs),
	}
}

func validateSpeakerInput(in domain.SpeakerInput) error {
	v := domain.NewValidationError()
	checkLength(v, "name", in.Name, domain.SpeakerNameMinLen, domain.SpeakerNameMaxLen)
	checkEmail(v, "email", in.Email, true)
	checkLength(v, "phone", in.Phone, 0, domain.PhoneMaxLen)
	checkHTTPURL(v, "profile_url", in.ProfileURL)
	checkHTTPURL(v, "photo_url", in.PhotoURL)
	return v.OrNil()
}

// ensureKeywordsExist fails with ErrNotFound when any id does not name a keyword.
func ensureKeywordsExist(ctx context.Context, repo domain.KeywordRepository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := repo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return fmt.Errorf("keyword: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *speakerService) Create(ctx context.Context, in domain.SpeakerInput) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in = normalizeSpeakerInput(in)
	if err := validateSpeakerInput(in); err != nil {
		return nil, err
	}

	var created *domain.Speaker
	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		if err := ensureKeywordsExist(ctx, repos.Keywords, in.KeywordIDs); err != nil {
			return err
		}
		now := s.now()
		sp := domain.NewSpeaker(in.Name, in.Email, in.Phone, in.Bio, in.PhotoURL, in.ProfileURL, now, now)
		if err := repos.Speakers.Create(ctx, sp); err != nil {
			return err
		}
		if err := repos.Speakers.SetKeywords(ctx, sp.ID, in.KeywordIDs); err != nil {
			return err
		}
		var err error
		created, err = repos.Speakers.GetByID(ctx, sp.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return created, nil
}

func (s *speakerService) Update(ctx context.Context, id string, in domain.SpeakerInput) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in = normalizeSpeakerInput(in)
	if err := validateSpeakerInput(in); err != nil {
		return nil, err
	}

	var updated *domain.Speaker
	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		sp, err := repos.Speakers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureKeywordsExist(ctx, repos.Keywords, in.KeywordIDs); err != nil {
			return err
		}
		sp.Name = in.Name
		sp.Email = in.Email
		sp.Phone = in.Phone
		sp.Bio = in.Bio
		sp.PhotoURL = in.PhotoURL
		sp.ProfileURL = in.ProfileURL
		sp.UpdatedAt = s.now()
		if err := repos.Speakers.Update(ctx, sp); err != nil {
			return err
		}
		if err := repos.Speakers.SetKeywords(ctx, sp.ID, in.KeywordIDs); err != nil {
			return err
		}
		updated, err = repos.Speakers.GetByID(ctx, sp.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update speaker: %w", err)
	}
	return updated, nil
}

// Delete removes the speaker with its ratings and links, then refreshes the stats of every event it was rated in.
func (s *speakerService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Speakers.GetByID(ctx, id); err != nil {
			return err
		}
		ratedEvents, err := repos.Ratings.EventIDsBySpeaker(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Ratings.DeleteBySpeaker(ctx, id); err != nil {
			return err
		}
		if err := repos.Speakers.Delete(ctx, id); err != nil {
			return err
		}
		for _, eventID := range ratedEvents {
			if err := refreshEventStats(ctx, repos, eventID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete speaker: %w", err)
	}
	return nil
}

func (s *speakerService) Get(ctx context.Context, id string) (*domain.SpeakerDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sp, err := s.repos.Speakers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	events, err := s.repos.Events.ListBySpeaker(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list speaker events: %w", err)
	}
	return &domain.SpeakerDetail{Speaker: sp, Events: events}, nil
}

// Search matches names by substring. A keyword filter resolves to the alphabetically first keyword
// containing the text; when none matches, the keyword filter is ignored.
func (s *speakerService) Search(ctx context.Context, filter domain.SpeakerFilter, params domain.PaginationParams) ([]*domain.Speaker, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	q := domain.SpeakerQuery{Name: strings.TrimSpace(filter.Name)}
	if text := strings.TrimSpace(filter.Keyword); text != "" {
		kw, err := s.repos.Keywords.FindFirstMatching(ctx, text)
		switch {
		case err == nil:
			q.KeywordID = kw.ID
		case !errors.Is(err, domain.ErrNotFound):
			return nil, 0, fmt.Errorf("resolve keyword: %w", err)
		}
	}

	speakers, total, err := s.repos.Speakers.Search(ctx, q, params)
	if err != nil {
		return nil, 0, fmt.Errorf("search speakers: %w", err)
	}
	return speakers, total, nil
}

// refreshSpeakerState recomputes has_participated and the average rating of a speaker.
// excludeEventID is ignored by the participation count when non-empty.
func refreshSpeakerState(ctx context.Context, repos domain.Repositories, speakerID, excludeEventID string) error {
	n, err := repos.Events.CountForSpeaker(ctx, speakerID, excludeEventID)
	if err != nil {
		return err
	}
	if err := repos.Speakers.SetParticipated(ctx, speakerID, n > 0); err != nil {
		return err
	}
	return refreshSpeakerAverage(ctx, repos, speakerID)
}

func refreshEventStats(ctx context.Context, repos domain.Repositories, eventID string) error {
	stats, err := repos.Ratings.EventStats(ctx, eventID)
	if err != nil {
		return err
	}
	return repos.Events.SetRatingStats(ctx, eventID, domain.RoundRating(stats.Average), stats.Count)
}
