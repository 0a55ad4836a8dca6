package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerController_ListSpeakers(t *testing.T) {
	fake := &fakeSpeakerService{
		speakers: []*domain.Speaker{{ID: testSpeakerID, Name: "Rob Pike"}},
		total:    11,
	}
	ctrl := NewSpeakerController(testLogger, fake, &fakeProfileImporter{})
	req := httptest.NewRequest(http.MethodGet, "/speakers?name=rob&keyword=go&page=2&page_size=5", nil)
	rr := httptest.NewRecorder()

	ctrl.ListSpeakers(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var page helpers.Page[domain.Speaker]
	decodeEnvelope(t, rr, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rob Pike", page.Items[0].Name)
	assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 5, Total: 11, TotalPages: 3}, page.Pagination)
	assert.Equal(t, domain.SpeakerFilter{Name: "rob", Keyword: "go"}, fake.lastFilter)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 5}, fake.lastParams)
}

func TestSpeakerController_ListSpeakers_DefaultPagination(t *testing.T) {
	fake := &fakeSpeakerService{}
	ctrl := NewSpeakerController(testLogger, fake, &fakeProfileImporter{})
	rr := httptest.NewRecorder()

	ctrl.ListSpeakers(rr, httptest.NewRequest(http.MethodGet, "/speakers?page=-1&page_size=abc", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{Page: 1, PageSize: domain.DefaultPageSize}, fake.lastParams)
	var page helpers.Page[domain.Speaker]
	decodeEnvelope(t, rr, &page)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestSpeakerController_CreateSpeaker(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantFields []string
	}{
		{
			name:       "success",
			body:       `{"name":"Rob Pike","email":"rob@example.com","phone":"+1 555 0100","keyword_ids":["` + testKeywordID + `"]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid fields",
			body:       `{"name":"Ro","email":"rob","photo_url":"ftp://x","keyword_ids":["nope"]}`,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"name", "email", "photo_url", "keyword_ids[0]"},
		},
		{
			name:       "unknown keyword",
			body:       `{"name":"Rob Pike","email":"rob@example.com","keyword_ids":["` + testKeywordID + `"]}`,
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "service validation error",
			body:       `{"name":"Rob Pike","email":"rob@example.com"}`,
			fakeErr:    &domain.ValidationError{Fields: map[string]string{"email": "is already used"}},
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSpeakerService{err: tt.fakeErr}
			ctrl := NewSpeakerController(testLogger, fake, &fakeProfileImporter{})
			req := httptest.NewRequest(http.MethodPost, "/speakers", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.CreateSpeaker(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var speaker domain.Speaker
			envelope := decodeEnvelope(t, rr, &speaker)
			if len(tt.wantFields) > 0 {
				require.NotNil(t, envelope.Error)
				for _, f := range tt.wantFields {
					assert.Contains(t, envelope.Error.Fields, f)
				}
				return
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			assert.Equal(t, testSpeakerID, speaker.ID)
			assert.Equal(t, "+1 555 0100", fake.lastInput.Phone)
			assert.Equal(t, []string{testKeywordID}, fake.lastInput.KeywordIDs)
		})
	}
}

func TestSpeakerController_GetSpeaker(t *testing.T) {
	tests := []struct {
		name       string
		pathID     string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", pathID: testSpeakerID, wantStatus: http.StatusOK},
		{name: "malformed id", pathID: "42", wantStatus: http.StatusNotFound},
		{name: "not found", pathID: testSpeakerID, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSpeakerService{
				err: tt.fakeErr,
				detail: &domain.SpeakerDetail{
					Speaker: &domain.Speaker{ID: testSpeakerID, Name: "Rob Pike"},
					Events:  []*domain.Event{{ID: testEventID, Name: "Go Day"}},
				},
			}
			ctrl := NewSpeakerController(testLogger, fake, &fakeProfileImporter{})
			req := httptest.NewRequest(http.MethodGet, "/speakers/"+tt.pathID, nil)
			req.SetPathValue("speakerID", tt.pathID)
			rr := httptest.NewRecorder()

			ctrl.GetSpeaker(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var detail domain.SpeakerDetail
			decodeEnvelope(t, rr, &detail)
			assert.Equal(t, "Rob Pike", detail.Speaker.Name)
			require.Len(t, detail.Events, 1)
			assert.Equal(t, "Go Day", detail.Events[0].Name)
		})
	}
}

func TestSpeakerController_UpdateSpeaker(t *testing.T) {
	fake := &fakeSpeakerService{}
	ctrl := NewSpeakerController(testLogger, fake, &fakeProfileImporter{})
	req := httptest.NewRequest(http.MethodPut, "/speakers/"+testSpeakerID, bytes.NewBufferString(`{"name":"Rob Pike","email":"rob@golang.org"}`))
	req.SetPathValue("speakerID", testSpeakerID)
	rr := httptest.NewRecorder()

	ctrl.UpdateSpeaker(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testSpeakerID, fake.lastID)
	assert.Equal(t, "rob@golang.org", fake.lastInput.Email)
	assert.Nil(t, fake.lastInput.KeywordIDs)
}

func TestSpeakerController_DeleteSpeaker(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not found", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSpeakerService{err: tt.fakeErr}
			ctrl := NewSpeakerController(testLogger, fake, &fakeProfileImporter{})
			req := httptest.NewRequest(http.MethodDelete, "/speakers/"+testSpeakerID, nil)
			req.SetPathValue("speakerID", testSpeakerID)
			rr := httptest.NewRecorder()

			ctrl.DeleteSpeaker(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, testSpeakerID, fake.lastID)
		})
	}
}

func TestSpeakerController_RefreshProfile(t *testing.T) {
	speaker := &domain.Speaker{ID: testSpeakerID, Name: "Grace Hopper"}
	tests := []struct {
		name         string
		importer     *fakeProfileImporter
		wantStatus   int
		wantCategory string
	}{
		{
			name: "complete",
			importer: &fakeProfileImporter{
				speaker: speaker,
				result:  &domain.ProfileResult{Status: domain.ProfileComplete},
			},
			wantStatus:   http.StatusOK,
			wantCategory: "success",
		},
		{
			name: "partial warns",
			importer: &fakeProfileImporter{
				speaker: speaker,
				result:  &domain.ProfileResult{Status: domain.ProfilePartial, Missing: []string{"bio"}},
			},
			wantStatus:   http.StatusOK,
			wantCategory: "warning",
		},
		{name: "no profile url", importer: &fakeProfileImporter{err: domain.ErrNoProfileURL}, wantStatus: http.StatusUnprocessableEntity, wantCategory: "danger"},
		{name: "network failure", importer: &fakeProfileImporter{err: domain.ErrExternalService}, wantStatus: http.StatusBadGateway, wantCategory: "danger"},
		{name: "importer disabled", importer: &fakeProfileImporter{err: domain.ErrImporterDisabled}, wantStatus: http.StatusServiceUnavailable, wantCategory: "danger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewSpeakerController(testLogger, &fakeSpeakerService{}, tt.importer)
			req := httptest.NewRequest(http.MethodPost, "/speakers/"+testSpeakerID+"/refresh-profile", nil)
			req.SetPathValue("speakerID", testSpeakerID)
			rr := httptest.NewRecorder()

			ctrl.RefreshProfile(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp RefreshProfileResponse
			envelope := decodeEnvelope(t, rr, &resp)
			require.NotNil(t, envelope.Flash)
			assert.Equal(t, tt.wantCategory, envelope.Flash.Category)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, testSpeakerID, resp.Speaker.ID)
				assert.Equal(t, testSpeakerID, tt.importer.lastID)
			}
		})
	}
}
