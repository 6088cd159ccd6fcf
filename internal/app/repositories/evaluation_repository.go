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

// EvaluationStore is the persistence surface of the scoring workflow. A
// finalization writes answers, the station result, the assignment state and
// the derived aggregate through one store bound to one transaction.
type EvaluationStore interface {
	GetAssignmentByID(ctx context.Context, id int64) (*models.StudentExam, error)
	SaveAssignmentState(ctx context.Context, assignment *models.StudentExam) error
	UpsertAnswer(ctx context.Context, answer *models.StudentAnswer) error
	UpsertStationResult(ctx context.Context, result *models.StationResult) error
	SumStationScores(ctx context.Context, studentExamID int64) (float64, error)
}

// EvalTxRunner runs a function against an EvaluationStore bound to one
// transaction.
type EvalTxRunner interface {
	InEvalTx(ctx context.Context, fn func(EvaluationStore) error) error
}

// EvaluationRepository persists answers and station results. It embeds the
// assignment repository so a transaction-bound copy covers the whole scoring
// write set. It implements EvaluationStore and EvalTxRunner.
type EvaluationRepository struct {
	*AssignmentRepository
	q   db.Querier
	dbc *db.PostgresDB
	sb  squirrel.StatementBuilderType
}

// NewEvaluationRepository creates a new EvaluationRepository
func NewEvaluationRepository(dbc *db.PostgresDB) *EvaluationRepository {
	return &EvaluationRepository{
		AssignmentRepository: NewAssignmentRepository(dbc.Pool),
		q:                    dbc.Pool,
		dbc:                  dbc,
		sb:                   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *EvaluationRepository) WithTx(tx pgx.Tx) *EvaluationRepository {
	return &EvaluationRepository{
		AssignmentRepository: r.AssignmentRepository.WithTx(tx),
		q:                    tx,
		sb:                   r.sb,
	}
}

// InEvalTx runs fn against a transaction-bound copy of the repository
func (r *EvaluationRepository) InEvalTx(ctx context.Context, fn func(EvaluationStore) error) error {
	if r.dbc == nil {
		return errors.New("evaluation repository is already transaction-bound")
	}
	return r.dbc.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(r.WithTx(tx))
	})
}

// UpsertAnswer inserts or replaces the answer for (assignment, question).
// Repeat submissions overwrite the previous value and refresh answered_at.
func (r *EvaluationRepository) UpsertAnswer(ctx context.Context, answer *models.StudentAnswer) error {
	sql, args, err := r.sb.Insert("student_answers").
		Columns("student_exam_id", "question_id", "answer_text", "points_awarded", "comment").
		Values(answer.StudentExamID, answer.QuestionID, answer.AnswerText,
			answer.PointsAwarded, helpers.GetContentNullString(answer.Comment)).
		Suffix(`ON CONFLICT (student_exam_id, question_id) DO UPDATE SET
			answer_text = EXCLUDED.answer_text,
			points_awarded = EXCLUDED.points_awarded,
			comment = EXCLUDED.comment,
			answered_at = NOW()
		RETURNING id, answered_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert answer query: %w", err)
	}

	err = r.q.QueryRow(ctx, sql, args...).Scan(&answer.ID, &answer.AnsweredAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).
			Int64("assignmentID", answer.StudentExamID).
			Int64("questionID", answer.QuestionID).
			Msg("Error executing upsert answer query")
		return fmt.Errorf("error upserting answer: %w", err)
	}

	return nil
}

// GetAnswersByAssignment lists the recorded answers of an assignment
func (r *EvaluationRepository) GetAnswersByAssignment(ctx context.Context, studentExamID int64) ([]*models.StudentAnswer, error) {
	sql, args, err := r.sb.Select("id", "student_exam_id", "question_id", "answer_text",
		"points_awarded", "COALESCE(comment, '')", "answered_at").
		From("student_answers").
		Where(squirrel.Eq{"student_exam_id": studentExamID}).
		OrderBy("question_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get answers query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", studentExamID).Msg("Error executing get answers query")
		return nil, fmt.Errorf("error querying answers: %w", err)
	}
	defer rows.Close()

	answers := []*models.StudentAnswer{}
	for rows.Next() {
		a := &models.StudentAnswer{}
		if err := rows.Scan(&a.ID, &a.StudentExamID, &a.QuestionID, &a.AnswerText,
			&a.PointsAwarded, &a.Comment, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("error scanning answer row: %w", err)
		}
		answers = append(answers, a)
	}

	return answers, rows.Err()
}

// UpsertStationResult inserts or replaces the result for (assignment, station)
func (r *EvaluationRepository) UpsertStationResult(ctx context.Context, result *models.StationResult) error {
	sql, args, err := r.sb.Insert("station_results").
		Columns("student_exam_id", "station_id", "score", "remarks").
		Values(result.StudentExamID, result.StationID, result.Score,
			helpers.GetContentNullString(result.Remarks)).
		Suffix(`ON CONFLICT (student_exam_id, station_id) DO UPDATE SET
			score = EXCLUDED.score,
			remarks = EXCLUDED.remarks,
			recorded_at = NOW()
		RETURNING id, recorded_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert station result query: %w", err)
	}

	err = r.q.QueryRow(ctx, sql, args...).Scan(&result.ID, &result.RecordedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).
			Int64("assignmentID", result.StudentExamID).
			Int64("stationID", result.StationID).
			Msg("Error executing upsert station result query")
		return fmt.Errorf("error upserting station result: %w", err)
	}

	return nil
}

// GetStationResultsByAssignment lists the station results of an assignment
func (r *EvaluationRepository) GetStationResultsByAssignment(ctx context.Context, studentExamID int64) ([]*models.StationResult, error) {
	sql, args, err := r.sb.Select("id", "student_exam_id", "station_id", "score",
		"COALESCE(remarks, '')", "recorded_at").
		From("station_results").
		Where(squirrel.Eq{"student_exam_id": studentExamID}).
		OrderBy("station_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get station results query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", studentExamID).Msg("Error executing get station results query")
		return nil, fmt.Errorf("error querying station results: %w", err)
	}
	defer rows.Close()

	results := []*models.StationResult{}
	for rows.Next() {
		sr := &models.StationResult{}
		if err := rows.Scan(&sr.ID, &sr.StudentExamID, &sr.StationID, &sr.Score,
			&sr.Remarks, &sr.RecordedAt); err != nil {
			return nil, fmt.Errorf("error scanning station result row: %w", err)
		}
		results = append(results, sr)
	}

	return results, rows.Err()
}

// SumStationScores totals the recorded station scores of an assignment. The
// aggregate grade is always derived from this sum, never taken from a client.
func (r *EvaluationRepository) SumStationScores(ctx context.Context, studentExamID int64) (float64, error) {
	sql, args, err := r.sb.Select("COALESCE(SUM(score), 0)").
		From("station_results").
		Where(squirrel.Eq{"student_exam_id": studentExamID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sum station scores query: %w", err)
	}

	var total float64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("assignmentID", studentExamID).Msg("Error summing station scores")
		return 0, fmt.Errorf("error summing station scores: %w", err)
	}

	return total, nil
}
