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

// AssignmentRepository handles student-exam assignment rows
type AssignmentRepository struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(q db.Querier) *AssignmentRepository {
	return &AssignmentRepository{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *AssignmentRepository) WithTx(tx pgx.Tx) *AssignmentRepository {
	return &AssignmentRepository{q: tx, sb: r.sb}
}

var assignmentColumns = []string{"id", "student_id", "exam_id", "evaluator_id", "status",
	"anon_code", "started_at", "finished_at", "aggregate_score", "COALESCE(remarks, '')", "created_at"}

func scanAssignment(row pgx.Row) (*models.StudentExam, error) {
	a := &models.StudentExam{}
	err := row.Scan(&a.ID, &a.StudentID, &a.ExamID, &a.EvaluatorID, &a.Status, &a.AnonCode,
		&a.StartedAt, &a.FinishedAt, &a.AggregateScore, &a.Remarks, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAssignment inserts a new assignment. The unique (student_id, exam_id)
// constraint makes repeated assigns fail with ErrAssignmentAlreadyExists.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment *models.StudentExam) (int64, error) {
	sql, args, err := r.sb.Insert("student_exams").
		Columns("student_id", "exam_id", "evaluator_id", "status", "anon_code").
		Values(assignment.StudentID, assignment.ExamID, helpers.GetNullInt64(assignment.EvaluatorID),
			assignment.Status, assignment.AnonCode).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create assignment query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrAssignmentAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).
			Int64("studentID", assignment.StudentID).
			Int64("examID", assignment.ExamID).
			Msg("Error executing create assignment query")
		return 0, fmt.Errorf("error creating assignment: %w", err)
	}

	return id, nil
}

// GetAssignmentByID retrieves an assignment by ID
func (r *AssignmentRepository) GetAssignmentByID(ctx context.Context, id int64) (*models.StudentExam, error) {
	sql, args, err := r.sb.Select(assignmentColumns...).
		From("student_exams").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get assignment query: %w", err)
	}

	assignment, err := scanAssignment(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error scanning assignment row")
		return nil, fmt.Errorf("error getting assignment by ID: %w", err)
	}

	return assignment, nil
}

// ListAssignmentsByStudent lists a student's assignments, newest first
func (r *AssignmentRepository) ListAssignmentsByStudent(ctx context.Context, studentID int64) ([]*models.StudentExam, error) {
	return r.listAssignments(ctx, squirrel.Eq{"student_id": studentID})
}

// ListAssignmentsByExam lists the assignments of an exam
func (r *AssignmentRepository) ListAssignmentsByExam(ctx context.Context, examID int64) ([]*models.StudentExam, error) {
	return r.listAssignments(ctx, squirrel.Eq{"exam_id": examID})
}

// ListAssignmentsByEvaluator lists the assignments claimed by an evaluator
func (r *AssignmentRepository) ListAssignmentsByEvaluator(ctx context.Context, evaluatorID int64) ([]*models.StudentExam, error) {
	return r.listAssignments(ctx, squirrel.Eq{"evaluator_id": evaluatorID})
}

func (r *AssignmentRepository) listAssignments(ctx context.Context, where squirrel.Eq) ([]*models.StudentExam, error) {
	sql, args, err := r.sb.Select(assignmentColumns...).
		From("student_exams").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list assignments query")
		return nil, fmt.Errorf("error querying assignments: %w", err)
	}
	defer rows.Close()

	assignments := []*models.StudentExam{}
	for rows.Next() {
		a := &models.StudentExam{}
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ExamID, &a.EvaluatorID, &a.Status, &a.AnonCode,
			&a.StartedAt, &a.FinishedAt, &a.AggregateScore, &a.Remarks, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

// SaveAssignmentState persists the workflow fields of an assignment: status,
// evaluator claim, timestamps, aggregate score and remarks.
func (r *AssignmentRepository) SaveAssignmentState(ctx context.Context, assignment *models.StudentExam) error {
	sql, args, err := r.sb.Update("student_exams").
		SetMap(map[string]interface{}{
			"evaluator_id":    helpers.GetNullInt64(assignment.EvaluatorID),
			"status":          assignment.Status,
			"started_at":      assignment.StartedAt,
			"finished_at":     assignment.FinishedAt,
			"aggregate_score": helpers.GetNullFloat64(assignment.AggregateScore),
			"remarks":         helpers.GetContentNullString(assignment.Remarks),
		}).
		Where(squirrel.Eq{"id": assignment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save assignment query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", assignment.ID).Msg("Error executing save assignment query")
		return fmt.Errorf("error saving assignment state: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}

	return nil
}

// DeleteAssignment removes an assignment and, via FK cascade, its answers and
// station results.
func (r *AssignmentRepository) DeleteAssignment(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("student_exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete assignment query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error executing delete assignment query")
		return fmt.Errorf("error deleting assignment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}

	return nil
}
