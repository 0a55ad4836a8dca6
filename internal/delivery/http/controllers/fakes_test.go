package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID   = "7d3c2a4e-1f0b-4c55-9b8e-2a6f1e0d9c01"
	testSpeakerID = "0b6a9c1e-5d42-4f7a-8e13-9c2d7b4a6e02"
	testKeywordID = "4e1f8a2b-9c37-4d60-a5b1-3f7e2c8d9a03"
	testUserID    = "a9c5e3d1-2b4f-4a68-9e07-5d1c3b2a7f04"
	testAdminID   = "f2e4c6a8-0b1d-4e3f-8a5c-7b9d1e3f5a05"
)

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

// decodeEnvelope reads the standard response envelope and, when dst is non-nil, decodes its data into dst.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dst any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dst != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dst))
	}
	return envelope
}

// fakeCredentialService implements domain.CredentialService for handler tests.
type fakeCredentialService struct {
	err          error
	user         *domain.User
	users        []*domain.User
	token        string
	lastActorID  string
	lastRegister domain.RegisterInput
	lastEmail    string
	lastPassword string
	lastOld      string
	lastNew      string
	lastTargetID string
}

func (f *fakeCredentialService) Register(ctx context.Context, actorID string, in domain.RegisterInput) (*domain.User, error) {
	f.lastActorID = actorID
	f.lastRegister = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: testUserID, Name: in.Name, Email: in.Email, IsAdmin: in.IsAdmin}, nil
}

func (f *fakeCredentialService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	f.lastEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: testAdminID, Name: name, Email: email, IsAdmin: true}, nil
}

func (f *fakeCredentialService) SignUp(ctx context.Context, name, email, password string) (*domain.User, error) {
	f.lastEmail = email
	f.lastPassword = password
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: testUserID, Name: name, Email: email}, nil
}

func (f *fakeCredentialService) Authenticate(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	f.lastPassword = password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeCredentialService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	f.lastActorID = id
	f.lastOld = oldPassword
	f.lastNew = newPassword
	return f.err
}

func (f *fakeCredentialService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.lastActorID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeCredentialService) ListUsers(ctx context.Context, actorID string) ([]*domain.User, error) {
	f.lastActorID = actorID
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeCredentialService) DeleteUser(ctx context.Context, actorID, id string) error {
	f.lastActorID = actorID
	f.lastTargetID = id
	return f.err
}

// fakeSpeakerService implements domain.SpeakerService for handler tests.
type fakeSpeakerService struct {
	err        error
	detail     *domain.SpeakerDetail
	speakers   []*domain.Speaker
	total      int
	lastID     string
	lastInput  domain.SpeakerInput
	lastFilter domain.SpeakerFilter
	lastParams domain.PaginationParams
}

func (f *fakeSpeakerService) Create(ctx context.Context, in domain.SpeakerInput) (*domain.Speaker, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Speaker{ID: testSpeakerID, Name: in.Name, Email: in.Email}, nil
}

func (f *fakeSpeakerService) Update(ctx context.Context, id string, in domain.SpeakerInput) (*domain.Speaker, error) {
	f.lastID = id
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Speaker{ID: id, Name: in.Name, Email: in.Email}, nil
}

func (f *fakeSpeakerService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeSpeakerService) Get(ctx context.Context, id string) (*domain.SpeakerDetail, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeSpeakerService) Search(ctx context.Context, filter domain.SpeakerFilter, params domain.PaginationParams) ([]*domain.Speaker, int, error) {
	f.lastFilter = filter
	f.lastParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.speakers, f.total, nil
}

// fakeKeywordService implements domain.KeywordService for handler tests.
type fakeKeywordService struct {
	err      error
	keywords []*domain.Keyword
	lastText string
	lastID   string
}

func (f *fakeKeywordService) Create(ctx context.Context, text string) (*domain.Keyword, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Keyword{ID: testKeywordID, Text: text}, nil
}

func (f *fakeKeywordService) List(ctx context.Context) ([]*domain.Keyword, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.keywords, nil
}

func (f *fakeKeywordService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err        error
	detail     *domain.EventDetail
	events     []*domain.Event
	total      int
	lastID     string
	lastInput  domain.EventInput
	lastName   string
	lastPeriod domain.EventPeriod
	lastParams domain.PaginationParams
}

func (f *fakeEventService) Create(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: testEventID, Name: in.Name, StartTime: in.StartTime, EndTime: in.EndTime, Location: in.Location}, nil
}

func (f *fakeEventService) Update(ctx context.Context, id string, in domain.EventInput) (*domain.Event, error) {
	f.lastID = id
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: id, Name: in.Name, StartTime: in.StartTime, EndTime: in.EndTime, Location: in.Location}, nil
}

func (f *fakeEventService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeEventService) Get(ctx context.Context, id string) (*domain.EventDetail, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeEventService) Filter(ctx context.Context, name string, period domain.EventPeriod, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastName = name
	f.lastPeriod = period
	f.lastParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

// fakeRatingService implements domain.RatingService for handler tests.
type fakeRatingService struct {
	err       error
	created   bool
	ratings   []*domain.Rating
	lastInput domain.RateInput
	lastEvent string
}

func (f *fakeRatingService) Rate(ctx context.Context, in domain.RateInput) (*domain.Rating, bool, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, false, f.err
	}
	return &domain.Rating{ID: "rating-1", EventID: in.EventID, SpeakerID: in.SpeakerID, Score: in.Score, Comment: in.Comment}, f.created, nil
}

func (f *fakeRatingService) ListByEvent(ctx context.Context, id string) ([]*domain.Rating, error) {
	f.lastEvent = id
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings, nil
}

// fakeProfileImporter implements domain.ProfileImporter for handler tests.
type fakeProfileImporter struct {
	err          error
	results      []domain.ProfileResult
	result       *domain.ProfileResult
	speaker      *domain.Speaker
	lastCriteria domain.SearchCriteria
	lastURL      string
	lastSnapshot domain.ProfileSnapshot
	lastID       string
}

func (f *fakeProfileImporter) SearchCandidates(ctx context.Context, criteria domain.SearchCriteria) ([]domain.ProfileResult, error) {
	f.lastCriteria = criteria
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeProfileImporter) FetchProfile(ctx context.Context, profileURL string) (*domain.ProfileResult, error) {
	f.lastURL = profileURL
	if f.err != nil {
		return f.result, f.err
	}
	return f.result, nil
}

func (f *fakeProfileImporter) ImportCandidate(ctx context.Context, snapshot domain.ProfileSnapshot) (*domain.Speaker, error) {
	f.lastSnapshot = snapshot
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Speaker{ID: testSpeakerID, Name: snapshot.Name, ProfileURL: snapshot.ProfileURL}, nil
}

func (f *fakeProfileImporter) RefreshFromProfile(ctx context.Context, id string) (*domain.Speaker, *domain.ProfileResult, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.result, f.err
	}
	return f.speaker, f.result, nil
}

// fakeDashboardService implements domain.DashboardService for handler tests.
type fakeDashboardService struct {
	err      error
	overview *domain.DashboardOverview
}

func (f *fakeDashboardService) Overview(ctx context.Context) (*domain.DashboardOverview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overview, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	return f.err
}
