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
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// GroupRepository handles student group database operations
type GroupRepository struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(q db.Querier) *GroupRepository {
	return &GroupRepository{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *GroupRepository) WithTx(tx pgx.Tx) *GroupRepository {
	return &GroupRepository{q: tx, sb: r.sb}
}

// CreateGroup creates a new group
func (r *GroupRepository) CreateGroup(ctx context.Context, group *models.Group) (int64, error) {
	sql, args, err := r.sb.Insert("groups").
		Columns("name", "cohort_year").
		Values(group.Name, group.CohortYear).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create group query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create group query")
		return 0, fmt.Errorf("error creating group: %w", err)
	}

	return id, nil
}

// GetGroupByID retrieves a group by ID
func (r *GroupRepository) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	sql, args, err := r.sb.Select("id", "name", "cohort_year").
		From("groups").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get group query: %w", err)
	}

	group := &models.Group{}
	err = r.q.QueryRow(ctx, sql, args...).Scan(&group.ID, &group.Name, &group.CohortYear)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		logger.Error().Err(err).Int64("groupID", id).Msg("Error scanning group row")
		return nil, fmt.Errorf("error getting group by ID: %w", err)
	}

	return group, nil
}

// GetAllGroups retrieves all groups ordered by name
func (r *GroupRepository) GetAllGroups(ctx context.Context) ([]*models.Group, error) {
	sql, args, err := r.sb.Select("id", "name", "cohort_year").
		From("groups").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all groups query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all groups query")
		return nil, fmt.Errorf("error querying groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CohortYear); err != nil {
			return nil, fmt.Errorf("error scanning group row: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return groups, nil
}

// UpdateGroup updates an existing group
func (r *GroupRepository) UpdateGroup(ctx context.Context, group *models.Group) error {
	sql, args, err := r.sb.Update("groups").
		SetMap(map[string]interface{}{
			"name":        group.Name,
			"cohort_year": group.CohortYear,
		}).
		Where(squirrel.Eq{"id": group.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update group query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("groupID", group.ID).Msg("Error executing update group query")
		return fmt.Errorf("error updating group: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrGroupNotFound
	}

	return nil
}

// DeleteGroup deletes a group; membership rows are removed by the FK cascade
func (r *GroupRepository) DeleteGroup(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("groups").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete group query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("groupID", id).Msg("Error executing delete group query")
		return fmt.Errorf("error deleting group: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrGroupNotFound
	}

	return nil
}

// AddStudentToGroup links a student to a group; re-adding is a no-op
func (r *GroupRepository) AddStudentToGroup(ctx context.Context, groupID, studentID int64) error {
	sql, args, err := r.sb.Insert("student_groups").
		Columns("group_id", "student_id").
		Values(groupID, studentID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add student to group query: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("groupID", groupID).Int64("studentID", studentID).Msg("Error adding student to group")
		return fmt.Errorf("error adding student to group: %w", err)
	}

	return nil
}

// RemoveStudentFromGroup unlinks a student from a group
func (r *GroupRepository) RemoveStudentFromGroup(ctx context.Context, groupID, studentID int64) error {
	sql, args, err := r.sb.Delete("student_groups").
		Where(squirrel.Eq{"group_id": groupID, "student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove student from group query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("groupID", groupID).Int64("studentID", studentID).Msg("Error removing student from group")
		return fmt.Errorf("error removing student from group: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// GetStudentsByGroup lists the members of a group
func (r *GroupRepository) GetStudentsByGroup(ctx context.Context, groupID int64) ([]*models.Student, error) {
	sql, args, err := r.sb.Select("s.id", "s.enrollment_id", "s.first_name", "s.last_name", "COALESCE(s.email, '')", "s.hospital_id").
		From("students s").
		Join("student_groups sg ON sg.student_id = s.id").
		Where(squirrel.Eq{"sg.group_id": groupID}).
		OrderBy("s.last_name ASC", "s.first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get students by group query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("groupID", groupID).Msg("Error executing get students by group query")
		return nil, fmt.Errorf("error querying group students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student := &models.Student{}
		if err := rows.Scan(&student.ID, &student.EnrollmentID, &student.FirstName, &student.LastName, &student.Email, &student.HospitalID); err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}
