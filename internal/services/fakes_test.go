package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"speakerhub/internal/domain"
)

// memDB is an in-memory stand-in for the Postgres schema shared by the fake repositories.
// Failures can be injected per operation through fail, keyed like "Speakers.Create".
type memDB struct {
	nextID          int
	users           map[string]*domain.User
	speakers        map[string]*domain.Speaker
	keywords        map[string]*domain.Keyword
	speakerKeywords map[string][]string
	events          map[string]*domain.Event
	eventSpeakers   map[string][]string
	ratings         map[string]*domain.Rating
	fail            map[string]error
	calls           []string
}

func newMemDB() *memDB {
	return &memDB{
		users:           make(map[string]*domain.User),
		speakers:        make(map[string]*domain.Speaker),
		keywords:        make(map[string]*domain.Keyword),
		speakerKeywords: make(map[string][]string),
		events:          make(map[string]*domain.Event),
		eventSpeakers:   make(map[string][]string),
		ratings:         make(map[string]*domain.Rating),
		fail:            make(map[string]error),
	}
}

func (m *memDB) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memDB) op(name string) error {
	m.calls = append(m.calls, name)
	return m.fail[name]
}

func (m *memDB) repos() domain.Repositories {
	return domain.Repositories{
		Users:    &memUsers{m},
		Speakers: &memSpeakers{m},
		Keywords: &memKeywords{m},
		Events:   &memEvents{m},
		Ratings:  &memRatings{m},
	}
}

// memStore runs units of work directly against memDB.
type memStore struct {
	db    *memDB
	calls int
}

func (s *memStore) Do(ctx context.Context, fn func(repos domain.Repositories) error) error {
	s.calls++
	return fn(s.db.repos())
}

func (m *memDB) addSpeaker(sp *domain.Speaker, keywordIDs ...string) *domain.Speaker {
	if sp.ID == "" {
		sp.ID = m.id("sp")
	}
	cp := *sp
	cp.Keywords = nil
	m.speakers[sp.ID] = &cp
	m.speakerKeywords[sp.ID] = keywordIDs
	return sp
}

func (m *memDB) addKeyword(id, text string) *domain.Keyword {
	kw := &domain.Keyword{ID: id, Text: text}
	m.keywords[id] = kw
	return kw
}

func (m *memDB) addEvent(e *domain.Event, speakerIDs ...string) *domain.Event {
	if e.ID == "" {
		e.ID = m.id("ev")
	}
	cp := *e
	m.events[e.ID] = &cp
	m.eventSpeakers[e.ID] = speakerIDs
	return e
}

func (m *memDB) addRating(r *domain.Rating) {
	if r.ID == "" {
		r.ID = m.id("rt")
	}
	cp := *r
	m.ratings[r.SpeakerID+"|"+r.EventID] = &cp
}

type memUsers struct{ m *memDB }

func (r *memUsers) Create(ctx context.Context, u *domain.User) error {
	if err := r.m.op("Users.Create"); err != nil {
		return err
	}
	for _, existing := range r.m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = r.m.id("user")
	cp := *u
	r.m.users[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := r.m.op("Users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := r.m.op("Users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) List(ctx context.Context) ([]*domain.User, error) {
	if err := r.m.op("Users.List"); err != nil {
		return nil, err
	}
	out := []*domain.User{}
	for _, u := range r.m.users {
		cp := *u
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.User) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	if err := r.m.op("Users.UpdatePassword"); err != nil {
		return err
	}
	u, ok := r.m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash, u.Salt = hash, salt
	return nil
}

func (r *memUsers) Delete(ctx context.Context, id string) error {
	if err := r.m.op("Users.Delete"); err != nil {
		return err
	}
	if _, ok := r.m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

type memKeywords struct{ m *memDB }

func (r *memKeywords) Create(ctx context.Context, kw *domain.Keyword) error {
	if err := r.m.op("Keywords.Create"); err != nil {
		return err
	}
	for _, existing := range r.m.keywords {
		if strings.EqualFold(existing.Text, kw.Text) {
			return domain.ErrConflict
		}
	}
	kw.ID = r.m.id("kw")
	r.m.addKeyword(kw.ID, kw.Text)
	return nil
}

func (r *memKeywords) GetByID(ctx context.Context, id string) (*domain.Keyword, error) {
	kw, ok := r.m.keywords[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *kw
	return &cp, nil
}

func (r *memKeywords) sorted() []*domain.Keyword {
	out := []*domain.Keyword{}
	for _, kw := range r.m.keywords {
		cp := *kw
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.Keyword) int {
		return cmp.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	})
	return out
}

func (r *memKeywords) FindFirstMatching(ctx context.Context, substr string) (*domain.Keyword, error) {
	if err := r.m.op("Keywords.FindFirstMatching"); err != nil {
		return nil, err
	}
	for _, kw := range r.sorted() {
		if strings.Contains(strings.ToLower(kw.Text), strings.ToLower(substr)) {
			return kw, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memKeywords) List(ctx context.Context) ([]*domain.Keyword, error) {
	if err := r.m.op("Keywords.List"); err != nil {
		return nil, err
	}
	return r.sorted(), nil
}

func (r *memKeywords) ListByIDs(ctx context.Context, ids []string) ([]*domain.Keyword, error) {
	out := []*domain.Keyword{}
	for _, kw := range r.sorted() {
		if slices.Contains(ids, kw.ID) {
			out = append(out, kw)
		}
	}
	return out, nil
}

func (r *memKeywords) Delete(ctx context.Context, id string) error {
	if err := r.m.op("Keywords.Delete"); err != nil {
		return err
	}
	if _, ok := r.m.keywords[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.keywords, id)
	return nil
}

func (r *memKeywords) CountSpeakers(ctx context.Context, id string) (int, error) {
	n := 0
	for _, ids := range r.m.speakerKeywords {
		if slices.Contains(ids, id) {
			n++
		}
	}
	return n, nil
}

func (r *memKeywords) Ensure(ctx context.Context, text string) (*domain.Keyword, error) {
	if err := r.m.op("Keywords.Ensure"); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	for _, kw := range r.m.keywords {
		if strings.EqualFold(kw.Text, text) {
			cp := *kw
			return &cp, nil
		}
	}
	kw := r.m.addKeyword(r.m.id("kw"), text)
	cp := *kw
	return &cp, nil
}

type memSpeakers struct{ m *memDB }

func (r *memSpeakers) load(id string) *domain.Speaker {
	sp, ok := r.m.speakers[id]
	if !ok {
		return nil
	}
	cp := *sp
	cp.Keywords = []*domain.Keyword{}
	for _, kwID := range r.m.speakerKeywords[id] {
		if kw, ok := r.m.keywords[kwID]; ok {
			k := *kw
			cp.Keywords = append(cp.Keywords, &k)
		}
	}
	slices.SortFunc(cp.Keywords, func(a, b *domain.Keyword) int {
		return cmp.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	})
	return &cp
}

func (r *memSpeakers) all() []*domain.Speaker {
	out := []*domain.Speaker{}
	for id := range r.m.speakers {
		out = append(out, r.load(id))
	}
	slices.SortFunc(out, func(a, b *domain.Speaker) int {
		return cmp.Or(cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (r *memSpeakers) checkUnique(sp *domain.Speaker) error {
	for _, other := range r.m.speakers {
		if other.ID == sp.ID {
			continue
		}
		if sp.Email != "" && strings.EqualFold(other.Email, sp.Email) {
			return domain.ErrDuplicateEmail
		}
		if sp.ProfileURL != "" && other.ProfileURL == sp.ProfileURL {
			return domain.ErrDuplicateProfile
		}
	}
	return nil
}

func (r *memSpeakers) Create(ctx context.Context, sp *domain.Speaker) error {
	if err := r.m.op("Speakers.Create"); err != nil {
		return err
	}
	if err := r.checkUnique(sp); err != nil {
		return err
	}
	sp.ID = r.m.id("sp")
	r.m.addSpeaker(sp)
	return nil
}

func (r *memSpeakers) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	if err := r.m.op("Speakers.GetByID"); err != nil {
		return nil, err
	}
	if sp := r.load(id); sp != nil {
		return sp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memSpeakers) GetByIDs(ctx context.Context, ids []string) ([]*domain.Speaker, error) {
	out := []*domain.Speaker{}
	for _, sp := range r.all() {
		if slices.Contains(ids, sp.ID) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (r *memSpeakers) GetByProfileURL(ctx context.Context, profileURL string) (*domain.Speaker, error) {
	if err := r.m.op("Speakers.GetByProfileURL"); err != nil {
		return nil, err
	}
	for _, sp := range r.all() {
		if sp.ProfileURL == profileURL {
			return sp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSpeakers) Update(ctx context.Context, sp *domain.Speaker) error {
	if err := r.m.op("Speakers.Update"); err != nil {
		return err
	}
	existing, ok := r.m.speakers[sp.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(sp); err != nil {
		return err
	}
	cp := *sp
	cp.Keywords = nil
	cp.HasParticipated = existing.HasParticipated
	cp.AverageRating = existing.AverageRating
	r.m.speakers[sp.ID] = &cp
	return nil
}

func (r *memSpeakers) Delete(ctx context.Context, id string) error {
	if err := r.m.op("Speakers.Delete"); err != nil {
		return err
	}
	if _, ok := r.m.speakers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.speakers, id)
	delete(r.m.speakerKeywords, id)
	for eventID, ids := range r.m.eventSpeakers {
		r.m.eventSpeakers[eventID] = slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
	}
	return nil
}

func (r *memSpeakers) Search(ctx context.Context, q domain.SpeakerQuery, params domain.PaginationParams) ([]*domain.Speaker, int, error) {
	if err := r.m.op("Speakers.Search"); err != nil {
		return nil, 0, err
	}
	matched := []*domain.Speaker{}
	for _, sp := range r.all() {
		if q.Name != "" && !strings.Contains(strings.ToLower(sp.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.KeywordID != "" && !slices.Contains(r.m.speakerKeywords[sp.ID], q.KeywordID) {
			continue
		}
		matched = append(matched, sp)
	}
	return paginate(matched, params), len(matched), nil
}

func (r *memSpeakers) ListByEvent(ctx context.Context, eventID string) ([]*domain.Speaker, error) {
	out := []*domain.Speaker{}
	for _, sp := range r.all() {
		if slices.Contains(r.m.eventSpeakers[eventID], sp.ID) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (r *memSpeakers) SetKeywords(ctx context.Context, speakerID string, keywordIDs []string) error {
	if err := r.m.op("Speakers.SetKeywords"); err != nil {
		return err
	}
	r.m.speakerKeywords[speakerID] = slices.Clone(keywordIDs)
	return nil
}

func (r *memSpeakers) AddKeywords(ctx context.Context, speakerID string, keywordIDs []string) error {
	if err := r.m.op("Speakers.AddKeywords"); err != nil {
		return err
	}
	for _, id := range keywordIDs {
		if !slices.Contains(r.m.speakerKeywords[speakerID], id) {
			r.m.speakerKeywords[speakerID] = append(r.m.speakerKeywords[speakerID], id)
		}
	}
	return nil
}

func (r *memSpeakers) SetParticipated(ctx context.Context, id string, participated bool) error {
	if err := r.m.op("Speakers.SetParticipated"); err != nil {
		return err
	}
	sp, ok := r.m.speakers[id]
	if !ok {
		return domain.ErrNotFound
	}
	sp.HasParticipated = participated
	return nil
}

func (r *memSpeakers) SetAverageRating(ctx context.Context, id string, avg float64) error {
	sp, ok := r.m.speakers[id]
	if !ok {
		return domain.ErrNotFound
	}
	sp.AverageRating = avg
	return nil
}

func (r *memSpeakers) Count(ctx context.Context) (int, error) {
	if err := r.m.op("Speakers.Count"); err != nil {
		return 0, err
	}
	return len(r.m.speakers), nil
}

func (r *memSpeakers) ListRecent(ctx context.Context, limit int) ([]*domain.Speaker, error) {
	out := r.all()
	slices.SortStableFunc(out, func(a, b *domain.Speaker) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out[:min(limit, len(out))], nil
}

func (r *memSpeakers) ListTopRated(ctx context.Context, limit int) ([]*domain.Speaker, error) {
	out := slices.DeleteFunc(r.all(), func(sp *domain.Speaker) bool { return sp.AverageRating <= 0 })
	slices.SortStableFunc(out, func(a, b *domain.Speaker) int { return cmp.Compare(b.AverageRating, a.AverageRating) })
	return out[:min(limit, len(out))], nil
}

type memEvents struct{ m *memDB }

func (r *memEvents) all() []*domain.Event {
	out := []*domain.Event{}
	for _, e := range r.m.events {
		cp := *e
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.Event) int {
		return cmp.Or(b.StartTime.Compare(a.StartTime), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (r *memEvents) Create(ctx context.Context, e *domain.Event) error {
	if err := r.m.op("Events.Create"); err != nil {
		return err
	}
	e.ID = r.m.id("ev")
	r.m.addEvent(e)
	return nil
}

func (r *memEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if err := r.m.op("Events.GetByID"); err != nil {
		return nil, err
	}
	e, ok := r.m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEvents) Update(ctx context.Context, e *domain.Event) error {
	if err := r.m.op("Events.Update"); err != nil {
		return err
	}
	if _, ok := r.m.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	cp.Speakers = nil
	r.m.events[e.ID] = &cp
	return nil
}

func (r *memEvents) Delete(ctx context.Context, id string) error {
	if err := r.m.op("Events.Delete"); err != nil {
		return err
	}
	if _, ok := r.m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.events, id)
	delete(r.m.eventSpeakers, id)
	return nil
}

func (r *memEvents) Filter(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if err := r.m.op("Events.Filter"); err != nil {
		return nil, 0, err
	}
	matched := []*domain.Event{}
	for _, e := range r.all() {
		if filter.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(filter.Name)) {
			continue
		}
		switch filter.Period {
		case domain.PeriodPast:
			if !e.EndTime.Before(filter.Now) {
				continue
			}
		case domain.PeriodUpcoming:
			if e.StartTime.Before(filter.Now) {
				continue
			}
		}
		matched = append(matched, e)
	}
	return paginate(matched, params), len(matched), nil
}

func (r *memEvents) SetSpeakers(ctx context.Context, eventID string, speakerIDs []string) error {
	if err := r.m.op("Events.SetSpeakers"); err != nil {
		return err
	}
	r.m.eventSpeakers[eventID] = slices.Clone(speakerIDs)
	return nil
}

func (r *memEvents) ListSpeakerIDs(ctx context.Context, eventID string) ([]string, error) {
	ids := slices.Clone(r.m.eventSpeakers[eventID])
	slices.Sort(ids)
	return ids, nil
}

func (r *memEvents) IsSpeakerLinked(ctx context.Context, eventID, speakerID string) (bool, error) {
	return slices.Contains(r.m.eventSpeakers[eventID], speakerID), nil
}

func (r *memEvents) CountForSpeaker(ctx context.Context, speakerID, excludeEventID string) (int, error) {
	n := 0
	for eventID, ids := range r.m.eventSpeakers {
		if eventID != excludeEventID && slices.Contains(ids, speakerID) {
			n++
		}
	}
	return n, nil
}

func (r *memEvents) ListBySpeaker(ctx context.Context, speakerID string) ([]*domain.Event, error) {
	out := []*domain.Event{}
	for _, e := range r.all() {
		if slices.Contains(r.m.eventSpeakers[e.ID], speakerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEvents) SetRatingStats(ctx context.Context, eventID string, avg float64, count int) error {
	e, ok := r.m.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.AverageRating, e.RatingCount = avg, count
	return nil
}

func (r *memEvents) Count(ctx context.Context) (int, error) {
	return len(r.m.events), nil
}

func (r *memEvents) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	out := slices.DeleteFunc(r.all(), func(e *domain.Event) bool { return e.StartTime.Before(now) })
	slices.Reverse(out)
	return out[:min(limit, len(out))], nil
}

type memRatings struct{ m *memDB }

func (r *memRatings) Upsert(ctx context.Context, rating *domain.Rating) (bool, error) {
	if err := r.m.op("Ratings.Upsert"); err != nil {
		return false, err
	}
	key := rating.SpeakerID + "|" + rating.EventID
	if existing, ok := r.m.ratings[key]; ok {
		existing.Score, existing.Comment, existing.UpdatedAt = rating.Score, rating.Comment, rating.UpdatedAt
		rating.ID, rating.CreatedAt = existing.ID, existing.CreatedAt
		return false, nil
	}
	r.m.addRating(rating)
	rating.ID = r.m.ratings[key].ID
	return true, nil
}

func (r *memRatings) where(keep func(*domain.Rating) bool) []*domain.Rating {
	out := []*domain.Rating{}
	for _, rt := range r.m.ratings {
		if keep(rt) {
			cp := *rt
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Rating) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (r *memRatings) ListByEvent(ctx context.Context, eventID string) ([]*domain.Rating, error) {
	return r.where(func(rt *domain.Rating) bool { return rt.EventID == eventID }), nil
}

func (r *memRatings) SpeakerIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	ids := []string{}
	for _, rt := range r.where(func(rt *domain.Rating) bool { return rt.EventID == eventID }) {
		ids = append(ids, rt.SpeakerID)
	}
	return ids, nil
}

func (r *memRatings) EventIDsBySpeaker(ctx context.Context, speakerID string) ([]string, error) {
	ids := []string{}
	for _, rt := range r.where(func(rt *domain.Rating) bool { return rt.SpeakerID == speakerID }) {
		ids = append(ids, rt.EventID)
	}
	return ids, nil
}

func (r *memRatings) DeleteByEvent(ctx context.Context, eventID string) error {
	if err := r.m.op("Ratings.DeleteByEvent"); err != nil {
		return err
	}
	for key, rt := range r.m.ratings {
		if rt.EventID == eventID {
			delete(r.m.ratings, key)
		}
	}
	return nil
}

func (r *memRatings) DeleteBySpeaker(ctx context.Context, speakerID string) error {
	for key, rt := range r.m.ratings {
		if rt.SpeakerID == speakerID {
			delete(r.m.ratings, key)
		}
	}
	return nil
}

func (r *memRatings) stats(keep func(*domain.Rating) bool) domain.RatingStats {
	var stats domain.RatingStats
	var sum float64
	for _, rt := range r.where(keep) {
		sum += rt.Score
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average = domain.RoundRating(sum / float64(stats.Count))
	}
	return stats
}

func (r *memRatings) SpeakerStats(ctx context.Context, speakerID string) (domain.RatingStats, error) {
	return r.stats(func(rt *domain.Rating) bool { return rt.SpeakerID == speakerID }), nil
}

func (r *memRatings) EventStats(ctx context.Context, eventID string) (domain.RatingStats, error) {
	return r.stats(func(rt *domain.Rating) bool { return rt.EventID == eventID }), nil
}

func paginate[T any](items []T, params domain.PaginationParams) []T {
	start := min(params.Offset(), len(items))
	end := min(start+params.Limit(), len(items))
	return items[start:end]
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	salt    string
	saltErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return f.salt, nil
}

func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err       error
	lastRoles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastRoles = roles
	return "token-" + userID, nil
}

// fakeEmailService records welcome messages.
type fakeEmailService struct {
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
