package domain

import "context"

// Keyword length bounds.
const (
	KeywordMinLen = 2
	KeywordMaxLen = 50
)

// Keyword is a specialty tag attached to speakers.
// swagger:model Keyword
type Keyword struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// NewKeyword returns a new Keyword with the given text. ID is set by the repository on create.
func NewKeyword(text string) *Keyword {
	return &Keyword{Text: text}
}

// KeywordRepository defines storage for keywords.
type KeywordRepository interface {
	Create(ctx context.Context, kw *Keyword) error
	GetByID(ctx context.Context, id string) (*Keyword, error)
	// FindFirstMatching returns the alphabetically first keyword whose text contains substr (case-insensitive).
	FindFirstMatching(ctx context.Context, substr string) (*Keyword, error)
	List(ctx context.Context) ([]*Keyword, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Keyword, error)
	Delete(ctx context.Context, id string) error
	// CountSpeakers returns how many speakers reference the keyword.
	CountSpeakers(ctx context.Context, id string) (int, error)
	// Ensure resolves a keyword by text (case-insensitive), creating it if missing.
	Ensure(ctx context.Context, text string) (*Keyword, error)
}

// KeywordService manages the keyword vocabulary.
type KeywordService interface {
	Create(ctx context.Context, text string) (*Keyword, error)
	List(ctx context.Context) ([]*Keyword, error)
	Delete(ctx context.Context, id string) error
}
