package domain

import (
	"context"
	"time"
)

// Speaker field limits.
const (
	SpeakerNameMinLen = 3
	SpeakerNameMaxLen = 100
	EmailMaxLen       = 100
	PhoneMaxLen       = 20
)

// Speaker represents a person who can be booked for events.
// swagger:model Speaker
type Speaker struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Bio              string     `json:"bio,omitempty"`
	PhotoURL         string     `json:"photo_url,omitempty"`
	ProfileURL       string     `json:"profile_url,omitempty"`
	ProfileTitle     string     `json:"profile_title,omitempty"`
	ProfileCompany   string     `json:"profile_company,omitempty"`
	ProfileFollowers int        `json:"profile_followers"`
	ProfileSyncedAt  *time.Time `json:"profile_synced_at,omitempty"`
	HasParticipated  bool       `json:"has_participated"`
	AverageRating    float64    `json:"average_rating"`
	Keywords         []*Keyword `json:"keywords"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewSpeaker returns a new Speaker with the given fields. ID is typically set by the repository on create.
func NewSpeaker(name, email, phone, bio, photoURL, profileURL string, createdAt, updatedAt time.Time) *Speaker {
	return &Speaker{
		Name:       name,
		Email:      email,
		Phone:      phone,
		Bio:        bio,
		PhotoURL:   photoURL,
		ProfileURL: profileURL,
		Keywords:   []*Keyword{},
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// SpeakerInput holds the editable fields of a speaker.
type SpeakerInput struct {
	Name       string
	Email      string
	Phone      string
	Bio        string
	PhotoURL   string
	ProfileURL string
	KeywordIDs []string
}

// SpeakerFilter narrows a speaker search. Empty fields do not filter.
type SpeakerFilter struct {
	Name    string
	Keyword string
}

// SpeakerQuery is the resolved filter handed to storage.
type SpeakerQuery struct {
	Name      string
	KeywordID string
}

// SpeakerDetail is a speaker with the events it is linked to.
type SpeakerDetail struct {
	Speaker *Speaker `json:"speaker"`
	Events  []*Event `json:"events"`
}

// SpeakerRepository defines the interface for speaker storage
type SpeakerRepository interface {
	Create(ctx context.Context, s *Speaker) error
	GetByID(ctx context.Context, id string) (*Speaker, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Speaker, error)
	GetByProfileURL(ctx context.Context, profileURL string) (*Speaker, error)
	Update(ctx context.Context, s *Speaker) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q SpeakerQuery, params PaginationParams) ([]*Speaker, int, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Speaker, error)
	// SetKeywords replaces all keyword links for the speaker.
	SetKeywords(ctx context.Context, speakerID string, keywordIDs []string) error
	// AddKeywords links keywords to the speaker, keeping existing links.
	AddKeywords(ctx context.Context, speakerID string, keywordIDs []string) error
	SetParticipated(ctx context.Context, id string, participated bool) error
	SetAverageRating(ctx context.Context, id string, avg float64) error
	Count(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*Speaker, error)
	ListTopRated(ctx context.Context, limit int) ([]*Speaker, error)
}

// SpeakerService defines the business logic for the speaker directory.
type SpeakerService interface {
	Create(ctx context.Context, in SpeakerInput) (*Speaker, error)
	Update(ctx context.Context, id string, in SpeakerInput) (*Speaker, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*SpeakerDetail, error)
	Search(ctx context.Context, filter SpeakerFilter, params PaginationParams) ([]*Speaker, int, error)
}
