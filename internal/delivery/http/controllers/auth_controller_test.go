package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"speakerhub/internal/delivery/http/middleware"
	"speakerhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantCode   string
		wantFields []string
	}{
		{
			name:       "success",
			body:       `{"name":"Ada Lovelace","email":"ada@example.com","password":"secret1"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid fields",
			body:       `{"name":"Al","email":"nope","password":"123"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
			wantFields: []string{"name", "email", "password"},
		},
		{
			name:       "unknown field rejected",
			body:       `{"name":"Ada Lovelace","email":"ada@example.com","password":"secret1","is_admin":true}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Ada Lovelace","email":"ada@example.com","password":"secret1"}`,
			fakeErr:    domain.ErrDuplicateEmail,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCredentialService{err: tt.fakeErr}
			ctrl := NewAuthController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var user domain.User
			envelope := decodeEnvelope(t, rr, &user)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				for _, f := range tt.wantFields {
					assert.Contains(t, envelope.Error.Fields, f)
				}
				return
			}
			require.Nil(t, envelope.Error)
			assert.Equal(t, "ada@example.com", user.Email)
			assert.False(t, user.IsAdmin)
			require.NotNil(t, envelope.Flash)
			assert.Equal(t, "success", envelope.Flash.Category)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantMsg    string
	}{
		{name: "success", body: `{"email":"ada@example.com","password":"secret1"}`, wantStatus: http.StatusOK},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest, wantMsg: "request body is empty"},
		{name: "missing password", body: `{"email":"ada@example.com"}`, wantStatus: http.StatusBadRequest, wantMsg: "some fields are invalid"},
		{
			name:       "invalid credentials",
			body:       `{"email":"ada@example.com","password":"wrong"}`,
			fakeErr:    domain.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "invalid email or password",
		},
		{
			name:       "internal error is not leaked",
			body:       `{"email":"ada@example.com","password":"secret1"}`,
			fakeErr:    errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCredentialService{
				err:   tt.fakeErr,
				token: "signed-token",
				user:  &domain.User{ID: testUserID, Email: "ada@example.com"},
			}
			ctrl := NewAuthController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var resp LoginResponse
			envelope := decodeEnvelope(t, rr, &resp)
			if tt.wantMsg != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantMsg, envelope.Error.Message)
				return
			}
			assert.Equal(t, "signed-token", resp.Token)
			assert.Equal(t, "Bearer", resp.TokenType)
			require.NotNil(t, resp.User)
			assert.Equal(t, testUserID, resp.User.ID)
			assert.Equal(t, "secret1", fake.lastPassword)
		})
	}
}

func TestAuthController_ChangePassword(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		fakeErr       error
		noUserContext bool
		wantStatus    int
		wantField     string
	}{
		{
			name:       "success",
			body:       `{"current_password":"secret1","new_password":"secret2","confirm_password":"secret2"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "confirmation mismatch",
			body:       `{"current_password":"secret1","new_password":"secret2","confirm_password":"secret3"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "confirm_password",
		},
		{
			name:       "new password too short",
			body:       `{"current_password":"secret1","new_password":"abc","confirm_password":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "new_password",
		},
		{
			name:       "wrong current password",
			body:       `{"current_password":"nope","new_password":"secret2","confirm_password":"secret2"}`,
			fakeErr:    domain.ErrWrongPassword,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:          "no user in context",
			body:          `{"current_password":"secret1","new_password":"secret2","confirm_password":"secret2"}`,
			noUserContext: true,
			wantStatus:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCredentialService{err: tt.fakeErr}
			ctrl := NewAuthController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/auth/password", bytes.NewBufferString(tt.body))
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), testUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.ChangePassword(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var status StatusResponse
			envelope := decodeEnvelope(t, rr, &status)
			if tt.wantField != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Fields, tt.wantField)
				assert.Empty(t, fake.lastNew, "service must not be called")
				return
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "password_changed", status.Status)
				assert.Equal(t, testUserID, fake.lastActorID)
				assert.Equal(t, "secret1", fake.lastOld)
				assert.Equal(t, "secret2", fake.lastNew)
			}
		})
	}
}
