package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/db"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/dberrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// ExamTreeStore is the persistence surface the exam composition engine works
// against: reads and inserts over the exam -> station -> question -> option
// tree plus the evaluator eligibility links.
type ExamTreeStore interface {
	GetExamByID(ctx context.Context, id int64) (*models.Exam, error)
	InsertExam(ctx context.Context, exam *models.Exam) (int64, error)
	GetStationsByExam(ctx context.Context, examID int64) ([]*models.Station, error)
	InsertStation(ctx context.Context, station *models.Station) (int64, error)
	GetQuestionsByStation(ctx context.Context, stationID int64) ([]*models.Question, error)
	InsertQuestion(ctx context.Context, question *models.Question) (int64, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	GetOptionsByQuestion(ctx context.Context, questionID int64) ([]*models.Option, error)
	InsertOption(ctx context.Context, option *models.Option) (int64, error)
	RecalcStationMaxScore(ctx context.Context, stationID int64) (float64, error)
	GetEvaluatorIDsByExam(ctx context.Context, examID int64) ([]int64, error)
	LinkEvaluatorToExam(ctx context.Context, evaluatorID, examID int64) error
}

// ExamTxRunner runs a function against an ExamTreeStore bound to one
// transaction; everything inside commits or rolls back together.
type ExamTxRunner interface {
	InTreeTx(ctx context.Context, fn func(ExamTreeStore) error) error
}

// ExamRepository handles the exam definition tree. It implements
// ExamTreeStore and ExamTxRunner.
type ExamRepository struct {
	q   db.Querier
	dbc *db.PostgresDB
	sb  squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(dbc *db.PostgresDB) *ExamRepository {
	return &ExamRepository{
		q:   dbc.Pool,
		dbc: dbc,
		sb:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ExamRepository) WithTx(tx pgx.Tx) *ExamRepository {
	return &ExamRepository{q: tx, sb: r.sb}
}

// InTreeTx runs fn against a transaction-bound copy of the repository
func (r *ExamRepository) InTreeTx(ctx context.Context, fn func(ExamTreeStore) error) error {
	if r.dbc == nil {
		return errors.New("exam repository is already transaction-bound")
	}
	return r.dbc.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(r.WithTx(tx))
	})
}

var examColumns = []string{"id", "title", "COALESCE(description, '')", "applied_at", "status", "created_at", "updated_at"}

func scanExam(row pgx.Row) (*models.Exam, error) {
	exam := &models.Exam{}
	err := row.Scan(&exam.ID, &exam.Title, &exam.Description, &exam.AppliedAt, &exam.Status, &exam.CreatedAt, &exam.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return exam, nil
}

// InsertExam inserts a new exam row
func (r *ExamRepository) InsertExam(ctx context.Context, exam *models.Exam) (int64, error) {
	sql, args, err := r.sb.Insert("exams").
		Columns("title", "description", "applied_at", "status").
		Values(exam.Title, helpers.GetContentNullString(exam.Description), exam.AppliedAt, exam.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create exam query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create exam query")
		return 0, fmt.Errorf("error creating exam: %w", err)
	}

	return id, nil
}

// GetExamByID retrieves an exam by ID
func (r *ExamRepository) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	sql, args, err := r.sb.Select(examColumns...).
		From("exams").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam query: %w", err)
	}

	exam, err := scanExam(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExamNotFound
		}
		logger.Error().Err(err).Int64("examID", id).Msg("Error scanning exam row")
		return nil, fmt.Errorf("error getting exam by ID: %w", err)
	}

	return exam, nil
}

// GetExams retrieves a page of exams plus the total count
func (r *ExamRepository) GetExams(ctx context.Context, offset uint64, limit int) ([]*models.Exam, int64, error) {
	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("exams").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count exams query: %w", err)
	}

	var total int64
	if err := r.q.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting exams: %w", err)
	}

	sql, args, err := r.sb.Select(examColumns...).
		From("exams").
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build get exams query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get exams query")
		return nil, 0, fmt.Errorf("error querying exams: %w", err)
	}
	defer rows.Close()

	exams := []*models.Exam{}
	for rows.Next() {
		exam := &models.Exam{}
		if err := rows.Scan(&exam.ID, &exam.Title, &exam.Description, &exam.AppliedAt, &exam.Status, &exam.CreatedAt, &exam.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning exam row: %w", err)
		}
		exams = append(exams, exam)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating exam rows: %w", err)
	}

	return exams, total, nil
}

// UpdateExam updates scalar exam fields
func (r *ExamRepository) UpdateExam(ctx context.Context, exam *models.Exam) error {
	sql, args, err := r.sb.Update("exams").
		SetMap(map[string]interface{}{
			"title":       exam.Title,
			"description": helpers.GetContentNullString(exam.Description),
			"applied_at":  exam.AppliedAt,
			"status":      exam.Status,
			"updated_at":  time.Now(),
		}).
		Where(squirrel.Eq{"id": exam.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update exam query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("examID", exam.ID).Msg("Error executing update exam query")
		return fmt.Errorf("error updating exam: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrExamNotFound
	}

	return nil
}

// DeleteExam deletes an exam definition unless student assignments exist.
// Stations, questions and options go with it via FK cascades.
func (r *ExamRepository) DeleteExam(ctx context.Context, id int64) error {
	var hasAssignments bool
	checkSql, checkArgs, err := r.sb.Select("1").
		From("student_exams").
		Where(squirrel.Eq{"exam_id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build check assignments query: %w", err)
	}

	err = r.q.QueryRow(ctx, checkSql, checkArgs...).Scan(&hasAssignments)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Int64("examID", id).Msg("Error checking exam assignments")
		return fmt.Errorf("error checking exam assignments: %w", err)
	}

	if hasAssignments {
		return apperrors.ErrExamHasAssignments
	}

	sql, args, err := r.sb.Delete("exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete exam query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("examID", id).Msg("Error executing delete exam query")
		return fmt.Errorf("error deleting exam: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrExamNotFound
	}

	return nil
}

// GetEvaluatorIDsByExam lists evaluators eligible for an exam
func (r *ExamRepository) GetEvaluatorIDsByExam(ctx context.Context, examID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("evaluator_id").
		From("evaluator_exams").
		Where(squirrel.Eq{"exam_id": examID}).
		OrderBy("evaluator_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get evaluator links query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying evaluator links: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning evaluator link row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// LinkEvaluatorToExam adds an eligibility link; duplicates are a no-op
func (r *ExamRepository) LinkEvaluatorToExam(ctx context.Context, evaluatorID, examID int64) error {
	sql, args, err := r.sb.Insert("evaluator_exams").
		Columns("evaluator_id", "exam_id").
		Values(evaluatorID, examID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build link evaluator query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil
		}
		logger.Error().Err(err).Int64("evaluatorID", evaluatorID).Int64("examID", examID).Msg("Error linking evaluator to exam")
		return fmt.Errorf("error linking evaluator to exam: %w", err)
	}

	return nil
}

// MarkExpiredInactive flips ACTIVO exams whose application date has passed
// to INACTIVO and returns how many rows changed.
func (r *ExamRepository) MarkExpiredInactive(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Update("exams").
		SetMap(map[string]interface{}{
			"status":     models.ExamStatusInactive,
			"updated_at": now,
		}).
		Where(squirrel.Eq{"status": models.ExamStatusActive}).
		Where(squirrel.Lt{"applied_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build status sweep query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing status sweep query")
		return 0, fmt.Errorf("error sweeping exam statuses: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
