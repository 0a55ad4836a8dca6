package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speakerhub/config"
	_ "speakerhub/docs"
	"speakerhub/internal/adapters/auth"
	"speakerhub/internal/adapters/email"
	"speakerhub/internal/adapters/profile"
	httpdelivery "speakerhub/internal/delivery/http"
	"speakerhub/internal/delivery/http/controllers"
	"speakerhub/internal/delivery/http/middleware"
	"speakerhub/internal/domain"
	"speakerhub/internal/repository/postgres"
	"speakerhub/internal/services"
	"speakerhub/migrations"

	"golang.org/x/crypto/bcrypt"
)

// @title Speaker Hub API
// @version 1.0
// @description Speaker directory: speakers, keywords, events, ratings and profile import.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.ApplyMigrations(ctx, db, migrations.FS, logger); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	store := postgres.NewStore(db)
	repos := store.Repositories()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("parse email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	jwt := auth.NewJWT(cfg.JWTSecret)
	credentialService := services.NewCredentialService(repos.Users, auth.NewBcryptHasher(bcrypt.DefaultCost), jwt, cfg.JWTExpiry, emailService, logger, cfg.RequestTimeout)
	speakerService := services.NewSpeakerService(store, repos, cfg.RequestTimeout)
	keywordService := services.NewKeywordService(repos.Keywords, cfg.RequestTimeout)
	eventService := services.NewEventService(store, repos, cfg.RequestTimeout)
	ratingService := services.NewRatingService(store, repos, cfg.RequestTimeout)
	dashboardService := services.NewDashboardService(repos, cfg.RequestTimeout)

	source, err := newProfileSource(cfg, logger)
	if err != nil {
		return err
	}
	importer := services.NewProfileImporter(source, store, repos, logger, cfg.Profile.Timeout)

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:      controllers.NewAuthController(logger, credentialService),
		Users:     controllers.NewUserController(logger, credentialService),
		Speakers:  controllers.NewSpeakerController(logger, speakerService, importer),
		Keywords:  controllers.NewKeywordController(logger, keywordService),
		Events:    controllers.NewEventController(logger, eventService, ratingService),
		Profiles:  controllers.NewProfileController(logger, importer),
		Dashboard: controllers.NewDashboardController(logger, dashboardService),
		Health:    controllers.NewHealthController(logger, db),
	}, jwt, logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, router))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Profile imports drive a real browser and can take much longer than ordinary requests.
		WriteTimeout: cfg.Profile.Timeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "profile_importer", cfg.ProfileImporterEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return postgres.Open(ctx, cfg.DBUrl, postgres.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
}

func newProfileSource(cfg *config.Config, logger *slog.Logger) (domain.ProfileSource, error) {
	if !cfg.ProfileImporterEnabled() {
		logger.Warn("profile importer disabled, PROFILE_USERNAME and PROFILE_PASSWORD are not set")
		return profile.Disabled{}, nil
	}
	launcher := profile.NewChromeLauncher(profile.ChromeConfig{
		RemoteURL:   cfg.Profile.BrowserURL,
		WaitTimeout: cfg.Profile.WaitTimeout,
	})
	source, err := profile.NewSource(profile.Config{
		Username: cfg.Profile.Username,
		Password: cfg.Profile.Password,
		BaseURL:  cfg.Profile.BaseURL,
	}, launcher, logger)
	if err != nil {
		return nil, fmt.Errorf("create profile source: %w", err)
	}
	return source, nil
}
