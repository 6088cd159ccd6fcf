package seed

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/ecoehub/ecoe-backend/internal/app/models"
	appRepos "github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/auth"
)

const defaultAdminEmail = "admin@ecoehub.app"

// CreateDefaultData seeds the default administrator account if it is missing.
// The password comes from SEED_ADMIN_PASSWORD; when unset, seeding is skipped
// so a fresh deployment never ships a known credential.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		lgr.Info().Msg("SEED_ADMIN_PASSWORD not set, skipping default admin seed")
		return nil
	}

	userRepo := appRepos.NewUserRepository(dbPool)

	if _, err := userRepo.GetUserByEmail(ctx, defaultAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Email:        defaultAdminEmail,
		PasswordHash: hash,
		FirstName:    "Default",
		LastName:     "Admin",
		Role:         appModels.RoleAdmin,
		IsActive:     true,
	}

	id, err := userRepo.CreateUser(ctx, admin)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	lgr.Info().Int64("userID", id).Str("email", defaultAdminEmail).Msg("Default admin account created")
	return nil
}
