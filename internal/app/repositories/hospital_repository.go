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
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// HospitalRepository handles hospital database operations
type HospitalRepository struct {
	q  db.Querier
	sb squirrel.StatementBuilderType
}

// NewHospitalRepository creates a new HospitalRepository
func NewHospitalRepository(q db.Querier) *HospitalRepository {
	return &HospitalRepository{
		q:  q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateHospital creates a new hospital
func (r *HospitalRepository) CreateHospital(ctx context.Context, hospital *models.Hospital) (int64, error) {
	sql, args, err := r.sb.Insert("hospitals").
		Columns("name", "city", "address").
		Values(hospital.Name, hospital.City, helpers.GetContentNullString(hospital.Address)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create hospital query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create hospital query")
		return 0, fmt.Errorf("error creating hospital: %w", err)
	}

	return id, nil
}

// GetHospitalByID retrieves a hospital by ID
func (r *HospitalRepository) GetHospitalByID(ctx context.Context, id int64) (*models.Hospital, error) {
	sql, args, err := r.sb.Select("id", "name", "city", "COALESCE(address, '')").
		From("hospitals").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get hospital query: %w", err)
	}

	hospital := &models.Hospital{}
	err = r.q.QueryRow(ctx, sql, args...).Scan(&hospital.ID, &hospital.Name, &hospital.City, &hospital.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrHospitalNotFound
		}
		logger.Error().Err(err).Int64("hospitalID", id).Msg("Error scanning hospital row")
		return nil, fmt.Errorf("error getting hospital by ID: %w", err)
	}

	return hospital, nil
}

// GetAllHospitals retrieves all hospitals ordered by name
func (r *HospitalRepository) GetAllHospitals(ctx context.Context) ([]*models.Hospital, error) {
	sql, args, err := r.sb.Select("id", "name", "city", "COALESCE(address, '')").
		From("hospitals").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all hospitals query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all hospitals query")
		return nil, fmt.Errorf("error querying hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := []*models.Hospital{}
	for rows.Next() {
		hospital := &models.Hospital{}
		if err := rows.Scan(&hospital.ID, &hospital.Name, &hospital.City, &hospital.Address); err != nil {
			return nil, fmt.Errorf("error scanning hospital row: %w", err)
		}
		hospitals = append(hospitals, hospital)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hospital rows: %w", err)
	}

	return hospitals, nil
}

// UpdateHospital updates an existing hospital
func (r *HospitalRepository) UpdateHospital(ctx context.Context, hospital *models.Hospital) error {
	sql, args, err := r.sb.Update("hospitals").
		SetMap(map[string]interface{}{
			"name":    hospital.Name,
			"city":    hospital.City,
			"address": helpers.GetContentNullString(hospital.Address),
		}).
		Where(squirrel.Eq{"id": hospital.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update hospital query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("hospitalID", hospital.ID).Msg("Error executing update hospital query")
		return fmt.Errorf("error updating hospital: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrHospitalNotFound
	}

	return nil
}

// DeleteHospital deletes a hospital unless students still reference it
func (r *HospitalRepository) DeleteHospital(ctx context.Context, id int64) error {
	var hasStudents bool
	checkSql, checkArgs, err := r.sb.Select("1").
		From("students").
		Where(squirrel.Eq{"hospital_id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build check students query: %w", err)
	}

	err = r.q.QueryRow(ctx, checkSql, checkArgs...).Scan(&hasStudents)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Int64("hospitalID", id).Msg("Error checking attached students")
		return fmt.Errorf("error checking attached students: %w", err)
	}

	if hasStudents {
		return apperrors.ErrHospitalHasStudents
	}

	sql, args, err := r.sb.Delete("hospitals").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete hospital query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("hospitalID", id).Msg("Error executing delete hospital query")
		return fmt.Errorf("error deleting hospital: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrHospitalNotFound
	}

	return nil
}
