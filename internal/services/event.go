package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"speakerhub/internal/domain"
)

type eventService struct {
	store          domain.UnitOfWork
	repos          domain.Repositories
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(store domain.UnitOfWork, repos domain.Repositories, timeout time.Duration) domain.EventService {
	return &eventService{
		store:          store,
		repos:          repos,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func normalizeEventInput(in domain.EventInput) domain.EventInput {
	return domain.EventInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		SpeakerIDs:  uniqueIDs(in.SpeakerIDs),
	}
}

func validateEventInput(in domain.EventInput) error {
	v := domain.NewValidationError()
	checkLength(v, "name", in.Name, domain.EventNameMinLen, domain.EventNameMaxLen)
	checkLength(v, "location", in.Location, 1, domain.EventLocationMaxLen)
	if in.StartTime.IsZero() {
		v.Add("start_time", "is required")
	}
	if in.EndTime.IsZero() {
		v.Add("end_time", "is required")
	}
	if !in.StartTime.IsZero() && !in.EndTime.IsZero() && in.EndTime.Before(in.StartTime) {
		v.Add("end_time", "must not be before start_time")
	}
	return v.OrNil()
}

// ensureSpeakersExist fails with ErrNotFound when any id does not name a speaker.
func ensureSpeakersExist(ctx context.Context, repo domain.SpeakerRepository, ids []string) ([]*domain.Speaker, error) {
	if len(ids) == 0 {
		return []*domain.Speaker{}, nil
	}
	found, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, fmt.Errorf("speaker: %w", domain.ErrNotFound)
	}
	return found, nil
}

// Create stores the event and marks every linked speaker as having participated.
func (s *eventService) Create(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in = normalizeEventInput(in)
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	var event *domain.Event
	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		speakers, err := ensureSpeakersExist(ctx, repos.Speakers, in.SpeakerIDs)
		if err != nil {
			return err
		}
		now := s.now()
		event = domain.NewEvent(in.Name, in.Description, in.Location, in.StartTime, in.EndTime, now, now)
		if err := repos.Events.Create(ctx, event); err != nil {
			return err
		}
		if err := repos.Events.SetSpeakers(ctx, event.ID, in.SpeakerIDs); err != nil {
			return err
		}
		for _, sp := range speakers {
			if err := repos.Speakers.SetParticipated(ctx, sp.ID, true); err != nil {
				return err
			}
			sp.HasParticipated = true
		}
		event.Speakers = speakers
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Update replaces the event fields and its full speaker set. Speakers dropped from the event keep
// has_participated only while another event still links them.
func (s *eventService) Update(ctx context.Context, id string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in = normalizeEventInput(in)
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	var event *domain.Event
	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		var err error
		event, err = repos.Events.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous, err := repos.Events.ListSpeakerIDs(ctx, id)
		if err != nil {
			return err
		}
		speakers, err := ensureSpeakersExist(ctx, repos.Speakers, in.SpeakerIDs)
		if err != nil {
			return err
		}

		event.Name = in.Name
		event.Description = in.Description
		event.Location = in.Location
		event.StartTime = in.StartTime
		event.EndTime = in.EndTime
		event.UpdatedAt = s.now()
		if err := repos.Events.Update(ctx, event); err != nil {
			return err
		}
		if err := repos.Events.SetSpeakers(ctx, id, in.SpeakerIDs); err != nil {
			return err
		}

		for _, sp := range speakers {
			if err := repos.Speakers.SetParticipated(ctx, sp.ID, true); err != nil {
				return err
			}
			sp.HasParticipated = true
		}
		for _, speakerID := range previous {
			if slices.Contains(in.SpeakerIDs, speakerID) {
				continue
			}
			n, err := repos.Events.CountForSpeaker(ctx, speakerID, id)
			if err != nil {
				return err
			}
			if err := repos.Speakers.SetParticipated(ctx, speakerID, n > 0); err != nil {
				return err
			}
		}
		event.Speakers = speakers
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete removes the event and its ratings, then recomputes participation and average rating
// for every speaker that was linked to or rated in it.
func (s *eventService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Events.GetByID(ctx, id); err != nil {
			return err
		}
		linked, err := repos.Events.ListSpeakerIDs(ctx, id)
		if err != nil {
			return err
		}
		rated, err := repos.Ratings.SpeakerIDsByEvent(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Ratings.DeleteByEvent(ctx, id); err != nil {
			return err
		}
		if err := repos.Events.Delete(ctx, id); err != nil {
			return err
		}
		for _, speakerID := range uniqueIDs(append(linked, rated...)) {
			if err := refreshSpeakerState(ctx, repos, speakerID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Get(ctx context.Context, id string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.repos.Events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	speakers, err := s.repos.Speakers.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list event speakers: %w", err)
	}
	ratings, err := s.repos.Ratings.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list event ratings: %w", err)
	}
	return &domain.EventDetail{Event: event, Speakers: speakers, Ratings: ratings}, nil
}

func (s *eventService) Filter(ctx context.Context, name string, period domain.EventPeriod, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if period == "" {
		period = domain.PeriodAll
	}
	filter := domain.EventFilter{
		Name:   strings.TrimSpace(name),
		Period: period,
		Now:    s.now().UTC(),
	}
	events, total, err := s.repos.Events.Filter(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("filter events: %w", err)
	}
	return events, total, nil
}
