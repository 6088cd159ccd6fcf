package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/db"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/dberrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// EvaluatorRepository handles evaluator database operations
type EvaluatorRepository struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

// NewEvaluatorRepository creates a new EvaluatorRepository
func NewEvaluatorRepository(q db.Querier) *EvaluatorRepository {
	return &EvaluatorRepository{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *EvaluatorRepository) WithTx(tx pgx.Tx) *EvaluatorRepository {
	return &EvaluatorRepository{q: tx, sb: r.sb}
}

// CreateEvaluator inserts an evaluator row for an existing user account
func (r *EvaluatorRepository) CreateEvaluator(ctx context.Context, evaluator *models.Evaluator) (int64, error) {
	sql, args, err := r.sb.Insert("evaluators").
		Columns("user_id", "specialty", "hospital_id").
		Values(evaluator.UserID, helpers.GetContentNullString(evaluator.Specialty), evaluator.HospitalID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create evaluator query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create evaluator query")
		return 0, fmt.Errorf("error creating evaluator: %w", err)
	}

	return id, nil
}

// GetEvaluatorByID retrieves an evaluator together with its user account
func (r *EvaluatorRepository) GetEvaluatorByID(ctx context.Context, id int64) (*models.Evaluator, error) {
	sql, args, err := r.sb.Select(
		"e.id", "e.user_id", "COALESCE(e.specialty, '')", "e.hospital_id",
		"u.email", "u.first_name", "u.last_name", "u.role", "u.is_active", "u.created_at").
		From("evaluators e").
		Join("users u ON u.id = e.user_id").
		Where(squirrel.Eq{"e.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get evaluator query: %w", err)
	}

	evaluator := &models.Evaluator{User: &models.User{}}
	err = r.q.QueryRow(ctx, sql, args...).Scan(
		&evaluator.ID, &evaluator.UserID, &evaluator.Specialty, &evaluator.HospitalID,
		&evaluator.User.Email, &evaluator.User.FirstName, &evaluator.User.LastName,
		&evaluator.User.Role, &evaluator.User.IsActive, &evaluator.User.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEvaluatorNotFound
		}
		logger.Error().Err(err).Int64("evaluatorID", id).Msg("Error scanning evaluator row")
		return nil, fmt.Errorf("error getting evaluator by ID: %w", err)
	}
	evaluator.User.ID = evaluator.UserID

	examIDs, err := r.GetExamIDs(ctx, evaluator.ID)
	if err != nil {
		return nil, err
	}
	evaluator.ExamIDs = examIDs

	return evaluator, nil
}

// GetEvaluatorByUserID retrieves an evaluator by its user account id
func (r *EvaluatorRepository) GetEvaluatorByUserID(ctx context.Context, userID int64) (*models.Evaluator, error) {
	sql, args, err := r.sb.Select("id", "user_id", "COALESCE(specialty, '')", "hospital_id").
		From("evaluators").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get evaluator by user query: %w", err)
	}

	evaluator := &models.Evaluator{}
	err = r.q.QueryRow(ctx, sql, args...).Scan(&evaluator.ID, &evaluator.UserID, &evaluator.Specialty, &evaluator.HospitalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEvaluatorNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error scanning evaluator row")
		return nil, fmt.Errorf("error getting evaluator by user ID: %w", err)
	}

	return evaluator, nil
}

// GetAllEvaluators lists evaluators with their user accounts
func (r *EvaluatorRepository) GetAllEvaluators(ctx context.Context) ([]*models.Evaluator, error) {
	sql, args, err := r.sb.Select(
		"e.id", "e.user_id", "COALESCE(e.specialty, '')", "e.hospital_id",
		"u.email", "u.first_name", "u.last_name", "u.role", "u.is_active", "u.created_at").
		From("evaluators e").
		Join("users u ON u.id = e.user_id").
		OrderBy("u.last_name ASC", "u.first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all evaluators query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all evaluators query")
		return nil, fmt.Errorf("error querying evaluators: %w", err)
	}
	defer rows.Close()

	evaluators := []*models.Evaluator{}
	for rows.Next() {
		evaluator := &models.Evaluator{User: &models.User{}}
		if err := rows.Scan(
			&evaluator.ID, &evaluator.UserID, &evaluator.Specialty, &evaluator.HospitalID,
			&evaluator.User.Email, &evaluator.User.FirstName, &evaluator.User.LastName,
			&evaluator.User.Role, &evaluator.User.IsActive, &evaluator.User.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning evaluator row: %w", err)
		}
		evaluator.User.ID = evaluator.UserID
		evaluators = append(evaluators, evaluator)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluator rows: %w", err)
	}

	return evaluators, nil
}

// UpdateEvaluator updates evaluator attributes
func (r *EvaluatorRepository) UpdateEvaluator(ctx context.Context, evaluator *models.Evaluator) error {
	sql, args, err := r.sb.Update("evaluators").
		SetMap(map[string]interface{}{
			"specialty":   helpers.GetContentNullString(evaluator.Specialty),
			"hospital_id": evaluator.HospitalID,
		}).
		Where(squirrel.Eq{"id": evaluator.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update evaluator query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("evaluatorID", evaluator.ID).Msg("Error executing update evaluator query")
		return fmt.Errorf("error updating evaluator: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEvaluatorNotFound
	}

	return nil
}

// HasActiveAssignments reports whether any student assignment references the evaluator
func (r *EvaluatorRepository) HasActiveAssignments(ctx context.Context, evaluatorID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("student_exams").
		Where(squirrel.Eq{"evaluator_id": evaluatorID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build check assignments query: %w", err)
	}

	var exists bool
	err = r.q.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Int64("evaluatorID", evaluatorID).Msg("Error checking evaluator assignments")
		return false, fmt.Errorf("error checking evaluator assignments: %w", err)
	}

	return exists, nil
}

// DeleteEvaluator removes the evaluator row and its eligibility links.
// The caller is expected to check HasActiveAssignments first.
func (r *EvaluatorRepository) DeleteEvaluator(ctx context.Context, id int64) error {
	linkSql, linkArgs, err := r.sb.Delete("evaluator_exams").
		Where(squirrel.Eq{"evaluator_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete evaluator links query: %w", err)
	}

	if _, err := r.q.Exec(ctx, linkSql, linkArgs...); err != nil {
		logger.Error().Err(err).Int64("evaluatorID", id).Msg("Error deleting evaluator links")
		return fmt.Errorf("error deleting evaluator links: %w", err)
	}

	sql, args, err := r.sb.Delete("evaluators").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete evaluator query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("evaluatorID", id).Msg("Error executing delete evaluator query")
		return fmt.Errorf("error deleting evaluator: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEvaluatorNotFound
	}

	return nil
}

// GetExamIDs lists the exams an evaluator is eligible for
func (r *EvaluatorRepository) GetExamIDs(ctx context.Context, evaluatorID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("exam_id").
		From("evaluator_exams").
		Where(squirrel.Eq{"evaluator_id": evaluatorID}).
		OrderBy("exam_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam links query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying exam links: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning exam link row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SetExamLinks replaces the evaluator's eligibility links
func (r *EvaluatorRepository) SetExamLinks(ctx context.Context, evaluatorID int64, examIDs []int64) error {
	delSql, delArgs, err := r.sb.Delete("evaluator_exams").
		Where(squirrel.Eq{"evaluator_id": evaluatorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear exam links query: %w", err)
	}

	if _, err := r.q.Exec(ctx, delSql, delArgs...); err != nil {
		return fmt.Errorf("error clearing exam links: %w", err)
	}

	for _, examID := range examIDs {
		insSql, insArgs, err := r.sb.Insert("evaluator_exams").
			Columns("evaluator_id", "exam_id").
			Values(evaluatorID, examID).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert exam link query: %w", err)
		}

		if _, err := r.q.Exec(ctx, insSql, insArgs...); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrExamNotFound
			}
			return fmt.Errorf("error inserting exam link: %w", err)
		}
	}

	return nil
}
