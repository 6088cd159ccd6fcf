package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/db"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/auth"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// EvaluatorService manages evaluator accounts and their exam eligibility
type EvaluatorService struct {
	dbc           *db.PostgresDB
	evaluatorRepo *repositories.EvaluatorRepository
	userRepo      *repositories.UserRepository
}

// NewEvaluatorService creates a new evaluator service instance
func NewEvaluatorService(dbc *db.PostgresDB, evaluatorRepo *repositories.EvaluatorRepository, userRepo *repositories.UserRepository) *EvaluatorService {
	return &EvaluatorService{dbc: dbc, evaluatorRepo: evaluatorRepo, userRepo: userRepo}
}

// CreateEvaluator creates the login account, the evaluator row and the exam
// eligibility links in one transaction.
func (s *EvaluatorService) CreateEvaluator(ctx context.Context, req *dto.CreateEvaluatorRequest) (*models.Evaluator, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	evaluator := &models.Evaluator{
		Specialty:  req.Specialty,
		HospitalID: req.HospitalID,
	}

	err = s.dbc.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		user := &models.User{
			Email:        req.Email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         models.RoleEvaluator,
			IsActive:     true,
		}

		userID, err := s.userRepo.WithTx(tx).CreateUser(ctx, user)
		if err != nil {
			return err
		}
		evaluator.UserID = userID
		evaluator.User = user
		evaluator.User.ID = userID

		evaluatorRepo := s.evaluatorRepo.WithTx(tx)
		evaluatorID, err := evaluatorRepo.CreateEvaluator(ctx, evaluator)
		if err != nil {
			return err
		}
		evaluator.ID = evaluatorID

		if len(req.ExamIDs) > 0 {
			if err := evaluatorRepo.SetExamLinks(ctx, evaluatorID, req.ExamIDs); err != nil {
				return err
			}
			evaluator.ExamIDs = req.ExamIDs
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("evaluatorID", evaluator.ID).Str("email", req.Email).Msg("Evaluator created")
	return s.evaluatorRepo.GetEvaluatorByID(ctx, evaluator.ID)
}

// GetEvaluator retrieves an evaluator with account and eligibility
func (s *EvaluatorService) GetEvaluator(ctx context.Context, id int64) (*models.Evaluator, error) {
	return s.evaluatorRepo.GetEvaluatorByID(ctx, id)
}

// GetEvaluatorByUserID resolves an evaluator from a login account
func (s *EvaluatorService) GetEvaluatorByUserID(ctx context.Context, userID int64) (*models.Evaluator, error) {
	return s.evaluatorRepo.GetEvaluatorByUserID(ctx, userID)
}

// ListEvaluators lists all evaluators with their accounts
func (s *EvaluatorService) ListEvaluators(ctx context.Context) ([]*models.Evaluator, error) {
	return s.evaluatorRepo.GetAllEvaluators(ctx)
}

// UpdateEvaluator updates evaluator attributes, the account name fields and
// the eligibility links in one transaction.
func (s *EvaluatorService) UpdateEvaluator(ctx context.Context, id int64, req *dto.UpdateEvaluatorRequest) (*models.Evaluator, error) {
	evaluator, err := s.evaluatorRepo.GetEvaluatorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.dbc.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		evaluator.Specialty = req.Specialty
		evaluator.HospitalID = req.HospitalID

		evaluatorRepo := s.evaluatorRepo.WithTx(tx)
		if err := evaluatorRepo.UpdateEvaluator(ctx, evaluator); err != nil {
			return err
		}

		if evaluator.User != nil {
			evaluator.User.FirstName = req.FirstName
			evaluator.User.LastName = req.LastName
			if err := s.userRepo.WithTx(tx).UpdateUser(ctx, evaluator.User); err != nil {
				return err
			}
		}

		if req.ExamIDs != nil {
			if err := evaluatorRepo.SetExamLinks(ctx, id, req.ExamIDs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.evaluatorRepo.GetEvaluatorByID(ctx, id)
}

// DeleteEvaluator removes an evaluator without active assignments, together
// with its login account.
func (s *EvaluatorService) DeleteEvaluator(ctx context.Context, id int64) error {
	evaluator, err := s.evaluatorRepo.GetEvaluatorByID(ctx, id)
	if err != nil {
		return err
	}

	busy, err := s.evaluatorRepo.HasActiveAssignments(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return apperrors.ErrEvaluatorHasAssignments
	}

	err = s.dbc.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.evaluatorRepo.WithTx(tx).DeleteEvaluator(ctx, id); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).DeleteUser(ctx, evaluator.UserID)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("evaluatorID", id).Msg("Evaluator deleted")
	return nil
}
