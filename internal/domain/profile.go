package domain

import "context"

// Candidate search limits.
const (
	DefaultMaxResults = 10
	MaxSearchResults  = 20
)

// ProfileStatus tags how much of a profile page could be read.
type ProfileStatus string

const (
	ProfileComplete ProfileStatus = "complete"
	ProfilePartial  ProfileStatus = "partial"
	ProfileFailed   ProfileStatus = "failed"
)

// ProfileSnapshot is the data read from an external professional profile page.
// swagger:model ProfileSnapshot
type ProfileSnapshot struct {
	ProfileURL string   `json:"profile_url"`
	Name       string   `json:"name"`
	Title      string   `json:"title,omitempty"`
	Company    string   `json:"company,omitempty"`
	Location   string   `json:"location,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	PhotoURL   string   `json:"photo_url,omitempty"`
	Followers  int      `json:"followers"`
	Skills     []string `json:"skills"`
}

// ProfileResult is the outcome of reading one profile. Snapshot is nil when Status is failed.
// swagger:model ProfileResult
type ProfileResult struct {
	Status            ProfileStatus    `json:"status"`
	Snapshot          *ProfileSnapshot `json:"snapshot,omitempty"`
	Missing           []string         `json:"missing,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	ExistingSpeakerID string           `json:"existing_speaker_id,omitempty"`
}

// SearchCriteria drives a candidate search.
type SearchCriteria struct {
	Keywords     []string
	Location     string
	MinFollowers int
	MaxResults   int
}

// ProfileSource reads profiles from an external network. Implementations own their browser session.
// A returned error means the source itself could not run; a page that could not be read
// comes back as a ProfileResult with Status ProfileFailed.
type ProfileSource interface {
	Search(ctx context.Context, criteria SearchCriteria) ([]ProfileResult, error)
	Fetch(ctx context.Context, profileURL string) (ProfileResult, error)
}

// ProfileImporter turns external profiles into speakers.
type ProfileImporter interface {
	SearchCandidates(ctx context.Context, criteria SearchCriteria) ([]ProfileResult, error)
	FetchProfile(ctx context.Context, profileURL string) (*ProfileResult, error)
	ImportCandidate(ctx context.Context, snapshot ProfileSnapshot) (*Speaker, error)
	RefreshFromProfile(ctx context.Context, speakerID string) (*Speaker, *ProfileResult, error)
}
