package http

import (
	"log/slog"
	"net/http"

	"speakerhub/internal/delivery/http/controllers"
	"speakerhub/internal/delivery/http/middleware"
	"speakerhub/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Speakers  *controllers.SpeakerController
	Keywords  *controllers.KeywordController
	Events    *controllers.EventController
	Profiles  *controllers.ProfileController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
// Everything except sign-up, login, health and swagger requires a bearer token.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/password", auth(c.Auth.ChangePassword))

	// Users
	mux.HandleFunc("GET /users/me", auth(c.Users.GetMe))
	mux.HandleFunc("GET /users", auth(c.Users.ListUsers))
	mux.HandleFunc("POST /users", auth(c.Users.CreateUser))
	mux.HandleFunc("DELETE /users/{userID}", auth(c.Users.DeleteUser))

	// Speakers
	mux.HandleFunc("GET /speakers", auth(c.Speakers.ListSpeakers))
	mux.HandleFunc("POST /speakers", auth(c.Speakers.CreateSpeaker))
	mux.HandleFunc("GET /speakers/{speakerID}", auth(c.Speakers.GetSpeaker))
	mux.HandleFunc("PUT /speakers/{speakerID}", auth(c.Speakers.UpdateSpeaker))
	mux.HandleFunc("DELETE /speakers/{speakerID}", auth(c.Speakers.DeleteSpeaker))
	mux.HandleFunc("POST /speakers/{speakerID}/refresh-profile", auth(c.Speakers.RefreshProfile))

	// Keywords
	mux.HandleFunc("GET /keywords", auth(c.Keywords.ListKeywords))
	mux.HandleFunc("POST /keywords", auth(c.Keywords.CreateKeyword))
	mux.HandleFunc("DELETE /keywords/{keywordID}", auth(c.Keywords.DeleteKeyword))

	// Events and ratings
	mux.HandleFunc("GET /events", auth(c.Events.ListEvents))
	mux.HandleFunc("POST /events", auth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/ratings", auth(c.Events.ListRatings))
	mux.HandleFunc("POST /events/{eventID}/speakers/{speakerID}/rating", auth(c.Events.RateSpeaker))

	// Profile importer
	mux.HandleFunc("POST /profiles/search", auth(c.Profiles.SearchProfiles))
	mux.HandleFunc("POST /profiles/fetch", auth(c.Profiles.FetchProfile))
	mux.HandleFunc("POST /profiles/import", auth(c.Profiles.ImportProfile))

	mux.HandleFunc("GET /dashboard", auth(c.Dashboard.Overview))
	mux.HandleFunc("GET /healthz", c.Health.Healthz)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
