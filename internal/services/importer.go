package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"speakerhub/internal/domain"
)

type profileImporter struct {
	source         domain.ProfileSource
	store          domain.UnitOfWork
	repos          domain.Repositories
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewProfileImporter creates a ProfileImporter reading from source. timeout bounds one whole
// browser session and is usually much longer than the request timeout of the other services.
func NewProfileImporter(source domain.ProfileSource, store domain.UnitOfWork, repos domain.Repositories, logger *slog.Logger, timeout time.Duration) domain.ProfileImporter {
	return &profileImporter{
		source:         source,
		store:          store,
		repos:          repos,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func normalizeCriteria(c domain.SearchCriteria) (domain.SearchCriteria, error) {
	out := domain.SearchCriteria{
		Location:     strings.TrimSpace(c.Location),
		MinFollowers: c.MinFollowers,
		MaxResults:   c.MaxResults,
	}
	for _, kw := range c.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out.Keywords = append(out.Keywords, kw)
		}
	}
	if out.MaxResults == 0 {
		out.MaxResults = domain.DefaultMaxResults
	}

	v := domain.NewValidationError()
	if len(out.Keywords) == 0 {
		v.Add("keywords", "at least one keyword is required")
	}
	if out.MinFollowers < 0 {
		v.Add("min_followers", "must not be negative")
	}
	if out.MaxResults < 1 || out.MaxResults > domain.MaxSearchResults {
		v.Add("max_results", fmt.Sprintf("must be between 1 and %d", domain.MaxSearchResults))
	}
	return out, v.OrNil()
}

// SearchCandidates lists profiles matching the criteria and flags the ones already imported.
func (s *profileImporter) SearchCandidates(ctx context.Context, criteria domain.SearchCriteria) ([]domain.ProfileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	criteria, err := normalizeCriteria(criteria)
	if err != nil {
		return nil, err
	}

	results, err := s.source.Search(ctx, criteria)
	if err != nil {
		return nil, s.sourceError(ctx, "search profiles", err)
	}
	for i := range results {
		s.logPartial(ctx, results[i])
		if err := s.markExisting(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *profileImporter) FetchProfile(ctx context.Context, profileURL string) (*domain.ProfileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	result, err := s.fetch(ctx, profileURL)
	if err != nil {
		return result, err
	}
	if err := s.markExisting(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ImportCandidate creates a speaker from a profile snapshot. Skills become keywords, created when missing.
func (s *profileImporter) ImportCandidate(ctx context.Context, snapshot domain.ProfileSnapshot) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	snapshot.Name = strings.TrimSpace(snapshot.Name)
	snapshot.ProfileURL = strings.TrimSpace(snapshot.ProfileURL)
	v := domain.NewValidationError()
	checkLength(v, "name", snapshot.Name, domain.SpeakerNameMinLen, domain.SpeakerNameMaxLen)
	if snapshot.ProfileURL == "" {
		v.Add("profile_url", "is required")
	} else {
		checkHTTPURL(v, "profile_url", snapshot.ProfileURL)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var imported *domain.Speaker
	err := s.store.Do(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Speakers.GetByProfileURL(ctx, snapshot.ProfileURL); err == nil {
			return domain.ErrDuplicateProfile
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		now := s.now()
		sp := domain.NewSpeaker(snapshot.Name, "", "", strings.TrimSpace(snapshot.Bio), validPhotoURL(snapshot.PhotoURL), snapshot.ProfileURL, now, now)
		sp.ProfileTitle = strings.TrimSpace(snapshot.Title)
		sp.ProfileCompany = strings.TrimSpace(snapshot.Company)
		sp.ProfileFollowers = max(snapshot.Followers, 0)
		sp.ProfileSyncedAt = &now
		if err := repos.Speakers.Create(ctx, sp); err != nil {
			return err
		}
		if err := attachSkills(ctx, repos, sp.ID, snapshot.Skills); err != nil {
			return err
		}
		var err error
		imported, err = repos.Speakers.GetByID(ctx, sp.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("import candidate: %w", err)
	}
	s.logger.InfoContext(ctx, "speaker imported from profile", "speaker_id", imported.ID, "profile_url", imported.ProfileURL)
	return imported, nil
}

// RefreshFromProfile re-reads the speaker's profile page. Only fields the page reported are
// overwritten; skills are merged into the existing keywords.
func (s *profileImporter) RefreshFromProfile(ctx context.Context, speakerID string) (*domain.Speaker, *domain.ProfileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sp, err := s.repos.Speakers.GetByID(ctx, speakerID)
	if err != nil {
		return nil, nil, fmt.Errorf("get speaker: %w", err)
	}
	if sp.ProfileURL == "" {
		return nil, nil, domain.ErrNoProfileURL
	}

	result, err := s.fetch(ctx, sp.ProfileURL)
	if err != nil {
		return nil, result, err
	}
	snap := result.Snapshot

	var refreshed *domain.Speaker
	err = s.store.Do(ctx, func(repos domain.Repositories) error {
		current, err := repos.Speakers.GetByID(ctx, speakerID)
		if err != nil {
			return err
		}
		applySnapshot(current, snap)
		now := s.now()
		current.ProfileSyncedAt = &now
		current.UpdatedAt = now
		if err := repos.Speakers.Update(ctx, current); err != nil {
			return err
		}
		if err := attachSkills(ctx, repos, current.ID, snap.Skills); err != nil {
			return err
		}
		refreshed, err = repos.Speakers.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, result, fmt.Errorf("refresh speaker profile: %w", err)
	}
	result.ExistingSpeakerID = refreshed.ID
	return refreshed, result, nil
}

// fetch reads one profile. A failed page read is returned together with an ErrExternalService error.
func (s *profileImporter) fetch(ctx context.Context, profileURL string) (*domain.ProfileResult, error) {
	profileURL = strings.TrimSpace(profileURL)
	if !isHTTPURL(profileURL) {
		v := domain.NewValidationError()
		v.Add("profile_url", "must be a valid http or https URL")
		return nil, v
	}

	result, err := s.source.Fetch(ctx, profileURL)
	if err != nil {
		return nil, s.sourceError(ctx, "fetch profile", err)
	}
	s.logPartial(ctx, result)
	if result.Status == domain.ProfileFailed || result.Snapshot == nil {
		s.logger.WarnContext(ctx, "profile fetch failed", "profile_url", profileURL, "reason", result.Reason)
		return &result, fmt.Errorf("fetch profile: %w", domain.ErrExternalService)
	}
	return &result, nil
}

func (s *profileImporter) sourceError(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrImporterDisabled) {
		return err
	}
	s.logger.ErrorContext(ctx, "profile source failed", "op", op, "err", err)
	return fmt.Errorf("%s: %w", op, domain.ErrExternalService)
}

func (s *profileImporter) logPartial(ctx context.Context, r domain.ProfileResult) {
	if r.Status != domain.ProfilePartial || r.Snapshot == nil {
		return
	}
	s.logger.WarnContext(ctx, "profile partially read", "profile_url", r.Snapshot.ProfileURL, "missing", r.Missing)
}

func (s *profileImporter) markExisting(ctx context.Context, r *domain.ProfileResult) error {
	if r.Snapshot == nil || r.Snapshot.ProfileURL == "" {
		return nil
	}
	sp, err := s.repos.Speakers.GetByProfileURL(ctx, r.Snapshot.ProfileURL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("check imported profile: %w", err)
	}
	r.ExistingSpeakerID = sp.ID
	return nil
}

func applySnapshot(sp *domain.Speaker, snap *domain.ProfileSnapshot) {
	if name := strings.TrimSpace(snap.Name); name != "" {
		if n := utf8.RuneCountInString(name); n >= domain.SpeakerNameMinLen && n <= domain.SpeakerNameMaxLen {
			sp.Name = name
		}
	}
	if bio := strings.TrimSpace(snap.Bio); bio != "" {
		sp.Bio = bio
	}
	if photo := validPhotoURL(snap.PhotoURL); photo != "" {
		sp.PhotoURL = photo
	}
	if title := strings.TrimSpace(snap.Title); title != "" {
		sp.ProfileTitle = title
	}
	if company := strings.TrimSpace(snap.Company); company != "" {
		sp.ProfileCompany = company
	}
	if snap.Followers > 0 {
		sp.ProfileFollowers = snap.Followers
	}
}

// attachSkills links each usable skill as a keyword, keeping the speaker's existing keywords.
func attachSkills(ctx context.Context, repos domain.Repositories, speakerID string, skills []string) error {
	var ids []string
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if n := utf8.RuneCountInString(skill); n < domain.KeywordMinLen || n > domain.KeywordMaxLen {
			continue
		}
		kw, err := repos.Keywords.Ensure(ctx, skill)
		if err != nil {
			return fmt.Errorf("ensure keyword %q: %w", skill, err)
		}
		ids = append(ids, kw.ID)
	}
	return repos.Speakers.AddKeywords(ctx, speakerID, uniqueIDs(ids))
}

func validPhotoURL(u string) string {
	u = strings.TrimSpace(u)
	if !isHTTPURL(u) {
		return ""
	}
	return u
}
