package domain

import (
	"context"
	"strings"
	"time"
)

// EventTimeLayout is the accepted input format for event start and end times.
const EventTimeLayout = "2006-01-02 15:04"

// Event field limits.
const (
	EventNameMinLen     = 3
	EventNameMaxLen     = 100
	EventLocationMaxLen = 100
)

// Event represents a talk, panel or conference day that speakers are booked for.
// swagger:model Event
type Event struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Location      string     `json:"location"`
	AverageRating float64    `json:"average_rating"`
	RatingCount   int        `json:"rating_count"`
	Speakers      []*Speaker `json:"speakers,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, description, location string, start, end, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:        name,
		Description: description,
		Location:    location,
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Concluded reports whether the event ended strictly before now.
func (e *Event) Concluded(now time.Time) bool {
	return e.EndTime.Before(now)
}

// EventPeriod selects events relative to the current time.
type EventPeriod string

const (
	PeriodAll      EventPeriod = "all"
	PeriodPast     EventPeriod = "past"
	PeriodUpcoming EventPeriod = "upcoming"
)

// ParseEventPeriod maps a query value to a period. Unknown values mean PeriodAll.
func ParseEventPeriod(s string) EventPeriod {
	switch EventPeriod(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodPast:
		return PeriodPast
	case PeriodUpcoming:
		return PeriodUpcoming
	default:
		return PeriodAll
	}
}

// EventFilter narrows an event listing. Now anchors the period comparison.
type EventFilter struct {
	Name   string
	Period EventPeriod
	Now    time.Time
}

// EventInput holds the editable fields of an event.
type EventInput struct {
	Name        string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	SpeakerIDs  []string
}

// EventDetail is an event with its speakers and ratings.
type EventDetail struct {
	Event    *Event     `json:"event"`
	Speakers []*Speaker `json:"speakers"`
	Ratings  []*Rating  `json:"ratings"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	Filter(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	// SetSpeakers replaces all speaker links for the event.
	SetSpeakers(ctx context.Context, eventID string, speakerIDs []string) error
	ListSpeakerIDs(ctx context.Context, eventID string) ([]string, error)
	IsSpeakerLinked(ctx context.Context, eventID, speakerID string) (bool, error)
	// CountForSpeaker counts the events linked to speakerID, ignoring excludeEventID when non-empty.
	CountForSpeaker(ctx context.Context, speakerID, excludeEventID string) (int, error)
	ListBySpeaker(ctx context.Context, speakerID string) ([]*Event, error)
	SetRatingStats(ctx context.Context, eventID string, avg float64, count int) error
	Count(ctx context.Context) (int, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*Event, error)
}

// EventService defines the business logic for the event catalog.
type EventService interface {
	Create(ctx context.Context, in EventInput) (*Event, error)
	Update(ctx context.Context, id string, in EventInput) (*Event, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*EventDetail, error)
	Filter(ctx context.Context, name string, period EventPeriod, params PaginationParams) ([]*Event, int, error)
}
