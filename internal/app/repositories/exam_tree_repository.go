package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/dberrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// Station, question and option persistence. These share the ExamRepository
// because the composition engine walks the whole tree inside one transaction.

// InsertStation inserts a station under an exam
func (r *ExamRepository) InsertStation(ctx context.Context, station *models.Station) (int64, error) {
	sql, args, err := r.sb.Insert("stations").
		Columns("exam_id", "title", "description", "duration_minutes", "order_index", "is_active", "max_score").
		Values(station.ExamID, station.Title, helpers.GetContentNullString(station.Description),
			station.DurationMinutes, station.OrderIndex, station.IsActive, station.MaxScore).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create station query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrExamNotFound
		}
		logger.Error().Err(err).Int64("examID", station.ExamID).Msg("Error executing create station query")
		return 0, fmt.Errorf("error creating station: %w", err)
	}

	return id, nil
}

// GetStationByID retrieves a station by ID
func (r *ExamRepository) GetStationByID(ctx context.Context, id int64) (*models.Station, error) {
	sql, args, err := r.sb.Select("id", "exam_id", "title", "COALESCE(description, '')",
		"duration_minutes", "order_index", "is_active", "max_score").
		From("stations").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get station query: %w", err)
	}

	station := &models.Station{}
	err = r.q.QueryRow(ctx, sql, args...).Scan(&station.ID, &station.ExamID, &station.Title,
		&station.Description, &station.DurationMinutes, &station.OrderIndex, &station.IsActive, &station.MaxScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStationNotFound
		}
		return nil, fmt.Errorf("error getting station by ID: %w", err)
	}

	return station, nil
}

// GetStationsByExam retrieves a exam's stations in order_index order
func (r *ExamRepository) GetStationsByExam(ctx context.Context, examID int64) ([]*models.Station, error) {
	sql, args, err := r.sb.Select("id", "exam_id", "title", "COALESCE(description, '')",
		"duration_minutes", "order_index", "is_active", "max_score").
		From("stations").
		Where(squirrel.Eq{"exam_id": examID}).
		OrderBy("order_index ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get stations query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("examID", examID).Msg("Error executing get stations query")
		return nil, fmt.Errorf("error querying stations: %w", err)
	}
	defer rows.Close()

	stations := []*models.Station{}
	for rows.Next() {
		station := &models.Station{}
		if err := rows.Scan(&station.ID, &station.ExamID, &station.Title, &station.Description,
			&station.DurationMinutes, &station.OrderIndex, &station.IsActive, &station.MaxScore); err != nil {
			return nil, fmt.Errorf("error scanning station row: %w", err)
		}
		stations = append(stations, station)
	}

	return stations, rows.Err()
}

// UpdateStation updates scalar station fields. MaxScore is managed by
// RecalcStationMaxScore and is not written here.
func (r *ExamRepository) UpdateStation(ctx context.Context, station *models.Station) error {
	sql, args, err := r.sb.Update("stations").
		SetMap(map[string]interface{}{
			"title":            station.Title,
			"description":      helpers.GetContentNullString(station.Description),
			"duration_minutes": station.DurationMinutes,
			"order_index":      station.OrderIndex,
			"is_active":        station.IsActive,
		}).
		Where(squirrel.Eq{"id": station.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update station query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating station: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStationNotFound
	}

	return nil
}

// DeleteStation deletes a station and its questions via FK cascade
func (r *ExamRepository) DeleteStation(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("stations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete station query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("stationID", id).Msg("Error executing delete station query")
		return fmt.Errorf("error deleting station: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStationNotFound
	}

	return nil
}

// RecalcStationMaxScore recomputes a station's max_score from the points of
// its questions and persists it, returning the new value.
func (r *ExamRepository) RecalcStationMaxScore(ctx context.Context, stationID int64) (float64, error) {
	sql := `UPDATE stations
		SET max_score = COALESCE((SELECT SUM(points) FROM questions WHERE station_id = $1), 0)
		WHERE id = $1
		RETURNING max_score`

	var maxScore float64
	if err := r.q.QueryRow(ctx, sql, stationID).Scan(&maxScore); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrStationNotFound
		}
		logger.Error().Err(err).Int64("stationID", stationID).Msg("Error recalculating station max score")
		return 0, fmt.Errorf("error recalculating station max score: %w", err)
	}

	return maxScore, nil
}

// InsertQuestion inserts a question under a station
func (r *ExamRepository) InsertQuestion(ctx context.Context, question *models.Question) (int64, error) {
	sql, args, err := r.sb.Insert("questions").
		Columns("station_id", "text", "type", "is_required", "order_index", "points",
			"min_value", "max_value", "reference_answer").
		Values(question.StationID, question.Text, question.Type, question.IsRequired,
			question.OrderIndex, question.Points, helpers.GetNullFloat64(question.MinValue),
			helpers.GetNullFloat64(question.MaxValue), helpers.GetNullString(question.ReferenceAnswer)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create question query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrStationNotFound
		}
		logger.Error().Err(err).Int64("stationID", question.StationID).Msg("Error executing create question query")
		return 0, fmt.Errorf("error creating question: %w", err)
	}

	return id, nil
}

// GetQuestionByID retrieves a question by ID
func (r *ExamRepository) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	sql, args, err := r.sb.Select("id", "station_id", "text", "type", "is_required",
		"order_index", "points", "min_value", "max_value", "reference_answer").
		From("questions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get question query: %w", err)
	}

	question := &models.Question{}
	err = r.q.QueryRow(ctx, sql, args...).Scan(&question.ID, &question.StationID, &question.Text,
		&question.Type, &question.IsRequired, &question.OrderIndex, &question.Points,
		&question.MinValue, &question.MaxValue, &question.ReferenceAnswer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("error getting question by ID: %w", err)
	}

	return question, nil
}

// GetQuestionsByStation retrieves a station's questions in order_index order
func (r *ExamRepository) GetQuestionsByStation(ctx context.Context, stationID int64) ([]*models.Question, error) {
	sql, args, err := r.sb.Select("id", "station_id", "text", "type", "is_required",
		"order_index", "points", "min_value", "max_value", "reference_answer").
		From("questions").
		Where(squirrel.Eq{"station_id": stationID}).
		OrderBy("order_index ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get questions query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("stationID", stationID).Msg("Error executing get questions query")
		return nil, fmt.Errorf("error querying questions: %w", err)
	}
	defer rows.Close()

	questions := []*models.Question{}
	for rows.Next() {
		question := &models.Question{}
		if err := rows.Scan(&question.ID, &question.StationID, &question.Text, &question.Type,
			&question.IsRequired, &question.OrderIndex, &question.Points,
			&question.MinValue, &question.MaxValue, &question.ReferenceAnswer); err != nil {
			return nil, fmt.Errorf("error scanning question row: %w", err)
		}
		questions = append(questions, question)
	}

	return questions, rows.Err()
}

// UpdateQuestion updates scalar question fields
func (r *ExamRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	sql, args, err := r.sb.Update("questions").
		SetMap(map[string]interface{}{
			"text":             question.Text,
			"type":             question.Type,
			"is_required":      question.IsRequired,
			"order_index":      question.OrderIndex,
			"points":           question.Points,
			"min_value":        helpers.GetNullFloat64(question.MinValue),
			"max_value":        helpers.GetNullFloat64(question.MaxValue),
			"reference_answer": helpers.GetNullString(question.ReferenceAnswer),
		}).
		Where(squirrel.Eq{"id": question.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update question query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating question: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrQuestionNotFound
	}

	return nil
}

// DeleteQuestion deletes a question and its options via FK cascade
func (r *ExamRepository) DeleteQuestion(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("questions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete question query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("questionID", id).Msg("Error executing delete question query")
		return fmt.Errorf("error deleting question: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrQuestionNotFound
	}

	return nil
}

// InsertOption inserts an option under a question
func (r *ExamRepository) InsertOption(ctx context.Context, option *models.Option) (int64, error) {
	sql, args, err := r.sb.Insert("options").
		Columns("question_id", "text", "is_correct", "order_index").
		Values(option.QuestionID, option.Text, option.IsCorrect, option.OrderIndex).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create option query: %w", err)
	}

	var id int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrQuestionNotFound
		}
		logger.Error().Err(err).Int64("questionID", option.QuestionID).Msg("Error executing create option query")
		return 0, fmt.Errorf("error creating option: %w", err)
	}

	return id, nil
}

// GetOptionByID retrieves an option by ID
func (r *ExamRepository) GetOptionByID(ctx context.Context, id int64) (*models.Option, error) {
	sql, args, err := r.sb.Select("id", "question_id", "text", "is_correct", "order_index").
		From("options").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get option query: %w", err)
	}

	option := &models.Option{}
	err = r.q.QueryRow(ctx, sql, args...).Scan(&option.ID, &option.QuestionID,
		&option.Text, &option.IsCorrect, &option.OrderIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOptionNotFound
		}
		return nil, fmt.Errorf("error getting option by ID: %w", err)
	}

	return option, nil
}

// GetOptionsByQuestion retrieves a question's options in order_index order
func (r *ExamRepository) GetOptionsByQuestion(ctx context.Context, questionID int64) ([]*models.Option, error) {
	sql, args, err := r.sb.Select("id", "question_id", "text", "is_correct", "order_index").
		From("options").
		Where(squirrel.Eq{"question_id": questionID}).
		OrderBy("order_index ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get options query: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("questionID", questionID).Msg("Error executing get options query")
		return nil, fmt.Errorf("error querying options: %w", err)
	}
	defer rows.Close()

	options := []*models.Option{}
	for rows.Next() {
		option := &models.Option{}
		if err := rows.Scan(&option.ID, &option.QuestionID, &option.Text,
			&option.IsCorrect, &option.OrderIndex); err != nil {
			return nil, fmt.Errorf("error scanning option row: %w", err)
		}
		options = append(options, option)
	}

	return options, rows.Err()
}

// UpdateOption updates an option
func (r *ExamRepository) UpdateOption(ctx context.Context, option *models.Option) error {
	sql, args, err := r.sb.Update("options").
		SetMap(map[string]interface{}{
			"text":        option.Text,
			"is_correct":  option.IsCorrect,
			"order_index": option.OrderIndex,
		}).
		Where(squirrel.Eq{"id": option.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update option query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating option: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOptionNotFound
	}

	return nil
}

// DeleteOption deletes an option
func (r *ExamRepository) DeleteOption(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("options").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete option query: %w", err)
	}

	cmdTag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("optionID", id).Msg("Error executing delete option query")
		return fmt.Errorf("error deleting option: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOptionNotFound
	}

	return nil
}
