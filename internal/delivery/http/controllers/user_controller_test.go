package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"speakerhub/internal/delivery/http/middleware"
	"speakerhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserController_GetMe(t *testing.T) {
	t.Run("returns the current user", func(t *testing.T) {
		fake := &fakeCredentialService{user: &domain.User{ID: testUserID, Name: "Ada Lovelace", Email: "ada@example.com"}}
		ctrl := NewUserController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), testUserID))
		rr := httptest.NewRecorder()

		ctrl.GetMe(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var user domain.User
		decodeEnvelope(t, rr, &user)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, testUserID, fake.lastActorID)
	})

	t.Run("password hash is never serialized", func(t *testing.T) {
		fake := &fakeCredentialService{user: &domain.User{ID: testUserID, Email: "ada@example.com", PasswordHash: "secret-hash", Salt: "secret-salt"}}
		ctrl := NewUserController(testLogger, fake)
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), testUserID))
		rr := httptest.NewRecorder()

		ctrl.GetMe(rr, req)

		assert.NotContains(t, rr.Body.String(), "secret-hash")
		assert.NotContains(t, rr.Body.String(), "secret-salt")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewUserController(testLogger, &fakeCredentialService{})
		rr := httptest.NewRecorder()

		ctrl.GetMe(rr, httptest.NewRequest(http.MethodGet, "/users/me", nil))

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserController_ListUsers(t *testing.T) {
	tests := []struct {
		name       string
		fake       *fakeCredentialService
		wantStatus int
		wantLen    int
	}{
		{
			name:       "admin lists users",
			fake:       &fakeCredentialService{users: []*domain.User{{ID: testAdminID}, {ID: testUserID}}},
			wantStatus: http.StatusOK,
			wantLen:    2,
		},
		{name: "nil list becomes empty", fake: &fakeCredentialService{}, wantStatus: http.StatusOK},
		{name: "non-admin forbidden", fake: &fakeCredentialService{err: domain.ErrForbidden}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, tt.fake)
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req = req.WithContext(middleware.SetUserID(req.Context(), testAdminID))
			rr := httptest.NewRecorder()

			ctrl.ListUsers(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var users []domain.User
			decodeEnvelope(t, rr, &users)
			require.NotNil(t, users)
			assert.Len(t, users, tt.wantLen)
			assert.Equal(t, testAdminID, tt.fake.lastActorID)
		})
	}
}

func TestUserController_CreateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
	}{
		{name: "admin creates admin", body: `{"name":"Grace Hopper","email":"grace@example.com","password":"secret1","is_admin":true}`, wantStatus: http.StatusCreated},
		{name: "invalid email", body: `{"name":"Grace Hopper","email":"grace","password":"secret1"}`, wantStatus: http.StatusBadRequest},
		{name: "forbidden", body: `{"name":"Grace Hopper","email":"grace@example.com","password":"secret1"}`, fakeErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "duplicate email", body: `{"name":"Grace Hopper","email":"grace@example.com","password":"secret1"}`, fakeErr: domain.ErrDuplicateEmail, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCredentialService{err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tt.body))
			req = req.WithContext(middleware.SetUserID(req.Context(), testAdminID))
			rr := httptest.NewRecorder()

			ctrl.CreateUser(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var user domain.User
			decodeEnvelope(t, rr, &user)
			assert.True(t, user.IsAdmin)
			assert.Equal(t, testAdminID, fake.lastActorID)
			assert.Equal(t, "secret1", fake.lastRegister.Password)
		})
	}
}

func TestUserController_DeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		pathID     string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", pathID: testUserID, wantStatus: http.StatusOK},
		{name: "malformed id", pathID: "not-a-uuid", wantStatus: http.StatusNotFound},
		{name: "cannot delete self", pathID: testAdminID, fakeErr: domain.ErrCannotDeleteSelf, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown user", pathID: testUserID, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCredentialService{err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "/users/"+tt.pathID, nil)
			req.SetPathValue("userID", tt.pathID)
			req = req.WithContext(middleware.SetUserID(req.Context(), testAdminID))
			rr := httptest.NewRecorder()

			ctrl.DeleteUser(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, testUserID, fake.lastTargetID)
			}
		})
	}
}
