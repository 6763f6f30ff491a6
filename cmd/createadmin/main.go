package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthbook/booking-api/internal/config"
	"github.com/healthbook/booking-api/internal/model"
	"github.com/healthbook/booking-api/internal/repository"
	"github.com/healthbook/booking-api/internal/repository/postgres"
)

// Seeds a verified admin account. Registration never produces admins, so the
// first one has to come from here.
func main() {
	var (
		email    = flag.String("email", "", "admin email address")
		name     = flag.String("name", "Admin", "admin display name")
		password = flag.String("password", "", "admin password")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal().Msg("-email and -password are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	accounts := postgres.NewAccountRepository(postgres.NewBaseRepository(db))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if existing, err := accounts.GetByEmail(ctx, *email); err == nil {
		log.Info().Str("email", existing.Email).Msg("admin account already exists")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatal().Err(err).Msg("failed to check for existing account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	admin := &model.Account{
		Email:        *email,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsVerified:   true,
	}
	if err := accounts.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("failed to create admin account")
	}

	log.Info().Str("email", admin.Email).Str("id", admin.ID.String()).Msg("admin account created")
}
