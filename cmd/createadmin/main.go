// Command createadmin creates the first administrator account.
//
//	go run ./cmd/createadmin -name "Ada Lovelace" -email ada@example.com -password 's3cret!'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"speakerhub/config"
	"speakerhub/internal/adapters/auth"
	"speakerhub/internal/domain"
	"speakerhub/internal/repository/postgres"
	"speakerhub/internal/services"
	"speakerhub/migrations"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin email (login)")
	password := flag.String("password", "", "admin password, at least 6 characters")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := config.NewLogger()
	if err := run(logger, *name, *email, *password); err != nil {
		logger.Error("create admin failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, name, email, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DBUrl, postgres.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.ApplyMigrations(ctx, db, migrations.FS, logger); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	svc := services.NewCredentialService(
		postgres.NewUserRepository(db),
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewJWT(cfg.JWTSecret),
		cfg.JWTExpiry,
		nil,
		logger,
		cfg.RequestTimeout,
	)
	user, err := svc.CreateAdmin(ctx, name, email, password)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid input: %v", verr)
		}
		return err
	}
	fmt.Printf("admin %s created with id %s\n", user.Email, user.ID)
	return nil
}
