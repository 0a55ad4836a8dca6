package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"speakerhub/internal/domain"
)

// DefaultBaseURL is the profile network the source signs into.
const DefaultBaseURL = "https://www.linkedin.com"

var errLoginFailed = errors.New("profile network login failed")

// Config configures a Source.
type Config struct {
	Username     string
	Password     string
	BaseURL      string
	ScrollRounds int
	ScrollPause  time.Duration
}

// Source reads profiles through a signed-in browser session. Every call opens its own
// session and closes it before returning.
type Source struct {
	cfg    Config
	base   *url.URL
	launch Launcher
	logger *slog.Logger
}

var _ domain.ProfileSource = (*Source)(nil)

// NewSource returns a Source that signs in with cfg's credentials.
func NewSource(cfg Config, launch Launcher, logger *slog.Logger) (*Source, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("profile source: username and password are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("profile source: invalid base url %q", cfg.BaseURL)
	}
	if cfg.ScrollRounds <= 0 {
		cfg.ScrollRounds = 3
	}
	if cfg.ScrollPause <= 0 {
		cfg.ScrollPause = 2 * time.Second
	}
	return &Source{cfg: cfg, base: base, launch: launch, logger: logger}, nil
}

// Search signs in, runs a people search and reads up to MaxResults profiles from it.
// Profiles below MinFollowers are dropped, an unread follower count being 0. Pages that could not be
// read are kept as failed results.
func (s *Source) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.ProfileResult, error) {
	session, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close(ctx, session)

	if err := session.Navigate(s.searchURL(criteria), searchResultSelector); err != nil {
		return nil, fmt.Errorf("load search results: %w", err)
	}
	if err := session.Scroll(s.cfg.ScrollRounds, s.cfg.ScrollPause); err != nil {
		return nil, fmt.Errorf("scroll search results: %w", err)
	}
	doc, err := document(session)
	if err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}

	urls := parseSearchResults(doc, s.base)
	if len(urls) > criteria.MaxResults && criteria.MaxResults > 0 {
		urls = urls[:criteria.MaxResults]
	}
	results := make([]domain.ProfileResult, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := s.readProfile(ctx, session, u)
		if r.Snapshot != nil && r.Snapshot.Followers < criteria.MinFollowers {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// Fetch signs in and reads a single profile page.
func (s *Source) Fetch(ctx context.Context, profileURL string) (domain.ProfileResult, error) {
	session, err := s.open(ctx)
	if err != nil {
		return domain.ProfileResult{}, err
	}
	defer s.close(ctx, session)

	return s.readProfile(ctx, session, profileURL), nil
}

func (s *Source) open(ctx context.Context) (Session, error) {
	session, err := s.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	if err := s.login(session); err != nil {
		s.close(ctx, session)
		return nil, err
	}
	return session, nil
}

func (s *Source) close(ctx context.Context, session Session) {
	if err := session.Close(); err != nil {
		s.logger.WarnContext(ctx, "close browser session", "err", err)
	}
}

func (s *Source) login(session Session) error {
	if err := session.Navigate(s.base.JoinPath("login").String(), "#username"); err != nil {
		return fmt.Errorf("%w: open login page: %v", errLoginFailed, err)
	}
	if err := session.Fill("#username", s.cfg.Username); err != nil {
		return fmt.Errorf("%w: %v", errLoginFailed, err)
	}
	if err := session.Fill("#password", s.cfg.Password); err != nil {
		return fmt.Errorf("%w: %v", errLoginFailed, err)
	}
	if err := session.Click(`button[type="submit"]`, "#global-nav"); err != nil {
		return fmt.Errorf("%w: %v", errLoginFailed, err)
	}
	return nil
}

func (s *Source) searchURL(criteria domain.SearchCriteria) string {
	u := s.base.JoinPath("search", "results", "people", "/")
	q := url.Values{}
	q.Set("keywords", strings.Join(criteria.Keywords, " "))
	q.Set("origin", "GLOBAL_SEARCH_HEADER")
	if criteria.Location != "" {
		q.Set("location", criteria.Location)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// readProfile never returns an error: a page that cannot be loaded becomes a failed result.
func (s *Source) readProfile(ctx context.Context, session Session, profileURL string) domain.ProfileResult {
	failed := func(reason string, err error) domain.ProfileResult {
		s.logger.WarnContext(ctx, "profile page unreadable", "profile_url", profileURL, "reason", reason, "err", err)
		return domain.ProfileResult{Status: domain.ProfileFailed, Reason: reason}
	}
	if err := session.Navigate(profileURL, profileReadySelector); err != nil {
		return failed("profile page did not load", err)
	}
	// Skills are lazy loaded further down the page.
	if err := session.Scroll(1, s.cfg.ScrollPause); err != nil {
		return failed("profile page did not scroll", err)
	}
	doc, err := document(session)
	if err != nil {
		return failed("profile page could not be read", err)
	}
	return parseProfile(doc, profileURL)
}

func document(session Session) (*goquery.Document, error) {
	html, err := session.HTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Disabled is the source used when no profile credentials are configured.
type Disabled struct{}

var _ domain.ProfileSource = Disabled{}

func (Disabled) Search(context.Context, domain.SearchCriteria) ([]domain.ProfileResult, error) {
	return nil, domain.ErrImporterDisabled
}

func (Disabled) Fetch(context.Context, string) (domain.ProfileResult, error) {
	return domain.ProfileResult{}, domain.ErrImporterDisabled
}
