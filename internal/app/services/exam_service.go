package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/cache"
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// examDefinitionStore is everything the exam service needs from persistence.
// *repositories.ExamRepository satisfies it; tests substitute an in-memory
// implementation.
type examDefinitionStore interface {
	repositories.ExamTreeStore
	repositories.ExamTxRunner
	GetExams(ctx context.Context, offset uint64, limit int) ([]*models.Exam, int64, error)
	UpdateExam(ctx context.Context, exam *models.Exam) error
	DeleteExam(ctx context.Context, id int64) error
	GetStationByID(ctx context.Context, id int64) (*models.Station, error)
	UpdateStation(ctx context.Context, station *models.Station) error
	DeleteStation(ctx context.Context, id int64) error
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	GetOptionByID(ctx context.Context, id int64) (*models.Option, error)
	UpdateOption(ctx context.Context, option *models.Option) error
	DeleteOption(ctx context.Context, id int64) error
	MarkExpiredInactive(ctx context.Context, now time.Time) (int64, error)
}

// ExamService manages the exam definition tree: exams, stations, questions
// and options, plus duplication and the status sweep.
type ExamService struct {
	store examDefinitionStore
	cache *cache.Cache
}

// NewExamService creates a new exam service instance
func NewExamService(store examDefinitionStore, c *cache.Cache) *ExamService {
	return &ExamService{store: store, cache: c}
}

func examTreeCacheKey(id int64) string {
	return fmt.Sprintf("exam_tree:%d", id)
}

func (s *ExamService) invalidateExamTree(examID int64) {
	if s.cache != nil {
		s.cache.Invalidate(examTreeCacheKey(examID))
	}
}

func parseExamStatus(raw string) (models.ExamStatus, error) {
	if raw == "" {
		return models.ExamStatusDraft, nil
	}
	switch models.ExamStatus(raw) {
	case models.ExamStatusDraft, models.ExamStatusActive, models.ExamStatusInactive:
		return models.ExamStatus(raw), nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("invalid exam status: %s", raw))
}

// CreateExam creates a new exam definition
func (s *ExamService) CreateExam(ctx context.Context, req *dto.CreateExamRequest) (*models.Exam, error) {
	status, err := parseExamStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var appliedAt *time.Time
	if req.AppliedAt != nil && *req.AppliedAt != "" {
		parsed, err := helpers.ParseApplicationDate(*req.AppliedAt)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid application date format")
		}
		appliedAt = &parsed
	}

	exam := &models.Exam{
		Title:       req.Title,
		Description: req.Description,
		AppliedAt:   appliedAt,
		Status:      status,
	}

	id, err := s.store.InsertExam(ctx, exam)
	if err != nil {
		return nil, err
	}
	exam.ID = id

	logger.Info().Int64("examID", id).Str("title", exam.Title).Msg("Exam created")
	return s.store.GetExamByID(ctx, id)
}

// GetExam retrieves an exam with its full station/question/option tree. The
// assembled tree is cached; forceRefresh bypasses a fresh entry.
func (s *ExamService) GetExam(ctx context.Context, id int64, forceRefresh bool) (*models.Exam, error) {
	fetch := func(ctx context.Context) (interface{}, error) {
		return s.loadExamTree(ctx, id)
	}

	if s.cache == nil {
		exam, err := s.loadExamTree(ctx, id)
		if err != nil {
			return nil, err
		}
		return exam, nil
	}

	value, err := s.cache.GetOrFetch(ctx, examTreeCacheKey(id), fetch, cache.Options{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}

	exam, ok := value.(*models.Exam)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for exam %d", id)
	}
	return exam, nil
}

func (s *ExamService) loadExamTree(ctx context.Context, id int64) (*models.Exam, error) {
	exam, err := s.store.GetExamByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stations, err := s.store.GetStationsByExam(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, station := range stations {
		questions, err := s.store.GetQuestionsByStation(ctx, station.ID)
		if err != nil {
			return nil, err
		}
		for _, question := range questions {
			if !question.Type.HasOptions() {
				continue
			}
			options, err := s.store.GetOptionsByQuestion(ctx, question.ID)
			if err != nil {
				return nil, err
			}
			question.Options = options
		}
		station.Questions = questions
	}

	exam.Stations = stations
	return exam, nil
}

// ListExams retrieves a page of exams plus the total count
func (s *ExamService) ListExams(ctx context.Context, page, pageSize int) ([]*models.Exam, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	return s.store.GetExams(ctx, offset, limit)
}

// UpdateExam updates scalar exam fields
func (s *ExamService) UpdateExam(ctx context.Context, id int64, req *dto.UpdateExamRequest) (*models.Exam, error) {
	exam, err := s.store.GetExamByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := parseExamStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if req.Status == "" {
		status = exam.Status
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.Status = status
	if req.AppliedAt != nil {
		if *req.AppliedAt == "" {
			exam.AppliedAt = nil
		} else {
			parsed, err := helpers.ParseApplicationDate(*req.AppliedAt)
			if err != nil {
				return nil, apperrors.NewValidationError("invalid application date format")
			}
			exam.AppliedAt = &parsed
		}
	}

	if err := s.store.UpdateExam(ctx, exam); err != nil {
		return nil, err
	}

	s.invalidateExamTree(id)
	return s.store.GetExamByID(ctx, id)
}

// DeleteExam deletes an exam definition that has no student assignments
func (s *ExamService) DeleteExam(ctx context.Context, id int64) error {
	if err := s.store.DeleteExam(ctx, id); err != nil {
		return err
	}
	s.invalidateExamTree(id)
	logger.Info().Int64("examID", id).Msg("Exam deleted")
	return nil
}

// CreateStation adds a station under an exam. The station starts with
// max_score 0 until questions are added.
func (s *ExamService) CreateStation(ctx context.Context, examID int64, req *dto.CreateStationRequest) (*models.Station, error) {
	if _, err := s.store.GetExamByID(ctx, examID); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	station := &models.Station{
		ExamID:          examID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		OrderIndex:      req.OrderIndex,
		IsActive:        isActive,
	}

	id, err := s.store.InsertStation(ctx, station)
	if err != nil {
		return nil, err
	}
	station.ID = id

	s.invalidateExamTree(examID)
	return station, nil
}

// ListStations retrieves the stations of an exam in order_index order
func (s *ExamService) ListStations(ctx context.Context, examID int64) ([]*models.Station, error) {
	if _, err := s.store.GetExamByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.store.GetStationsByExam(ctx, examID)
}

// UpdateStation updates scalar station fields
func (s *ExamService) UpdateStation(ctx context.Context, stationID int64, req *dto.CreateStationRequest) (*models.Station, error) {
	station, err := s.store.GetStationByID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	station.Title = req.Title
	station.Description = req.Description
	station.DurationMinutes = req.DurationMinutes
	station.OrderIndex = req.OrderIndex
	if req.IsActive != nil {
		station.IsActive = *req.IsActive
	}

	if err := s.store.UpdateStation(ctx, station); err != nil {
		return nil, err
	}

	s.invalidateExamTree(station.ExamID)
	return s.store.GetStationByID(ctx, stationID)
}

// DeleteStation removes a station and its questions
func (s *ExamService) DeleteStation(ctx context.Context, stationID int64) error {
	station, err := s.store.GetStationByID(ctx, stationID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteStation(ctx, stationID); err != nil {
		return err
	}

	s.invalidateExamTree(station.ExamID)
	return nil
}

func validateQuestionRequest(req *dto.CreateQuestionRequest) (models.QuestionType, error) {
	qType := models.QuestionType(req.Type)
	switch qType {
	case models.QuestionTypeText, models.QuestionTypeNumeric,
		models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid question type: %s", req.Type))
	}

	if req.Points < 0 {
		return "", apperrors.NewValidationError("points cannot be negative")
	}

	if qType.HasOptions() {
		if len(req.Options) == 0 {
			return "", apperrors.NewValidationError("choice questions require at least one option")
		}
	} else if len(req.Options) > 0 {
		return "", apperrors.NewValidationError("options are only allowed on choice questions")
	}

	if qType == models.QuestionTypeNumeric && req.MinValue != nil && req.MaxValue != nil && *req.MinValue > *req.MaxValue {
		return "", apperrors.NewValidationError("minValue cannot exceed maxValue")
	}

	return qType, nil
}

// CreateQuestion adds a question under a station, persisting inline options
// as rows and recomputing the station's max_score, all in one transaction.
func (s *ExamService) CreateQuestion(ctx context.Context, stationID int64, req *dto.CreateQuestionRequest) (*models.Question, error) {
	qType, err := validateQuestionRequest(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetStationByID(ctx, stationID); err != nil {
		return nil, err
	}

	question := &models.Question{
		StationID:       stationID,
		Text:            req.Text,
		Type:            qType,
		IsRequired:      req.IsRequired,
		OrderIndex:      req.OrderIndex,
		Points:          req.Points,
		MinValue:        req.MinValue,
		MaxValue:        req.MaxValue,
		ReferenceAnswer: req.ReferenceAnswer,
	}

	err = s.store.InTreeTx(ctx, func(tx repositories.ExamTreeStore) error {
		id, err := tx.InsertQuestion(ctx, question)
		if err != nil {
			return err
		}
		question.ID = id

		for _, opt := range req.Options {
			option := &models.Option{
				QuestionID: id,
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: opt.OrderIndex,
			}
			optID, err := tx.InsertOption(ctx, option)
			if err != nil {
				return err
			}
			option.ID = optID
			question.Options = append(question.Options, option)
		}

		_, err = tx.RecalcStationMaxScore(ctx, stationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	station, err := s.store.GetStationByID(ctx, stationID)
	if err == nil {
		s.invalidateExamTree(station.ExamID)
	}

	return question, nil
}

// ListQuestions retrieves the questions of a station, options included for
// choice questions
func (s *ExamService) ListQuestions(ctx context.Context, stationID int64) ([]*models.Question, error) {
	if _, err := s.store.GetStationByID(ctx, stationID); err != nil {
		return nil, err
	}

	questions, err := s.store.GetQuestionsByStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	for _, question := range questions {
		if !question.Type.HasOptions() {
			continue
		}
		options, err := s.store.GetOptionsByQuestion(ctx, question.ID)
		if err != nil {
			return nil, err
		}
		question.Options = options
	}
	return questions, nil
}

// UpdateQuestion updates a question and recomputes the station max_score
func (s *ExamService) UpdateQuestion(ctx context.Context, questionID int64, req *dto.CreateQuestionRequest) (*models.Question, error) {
	qType, err := validateQuestionRequest(req)
	if err != nil {
		return nil, err
	}

	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	question.Text = req.Text
	question.Type = qType
	question.IsRequired = req.IsRequired
	question.OrderIndex = req.OrderIndex
	question.Points = req.Points
	question.MinValue = req.MinValue
	question.MaxValue = req.MaxValue
	question.ReferenceAnswer = req.ReferenceAnswer

	err = s.store.InTreeTx(ctx, func(tx repositories.ExamTreeStore) error {
		if err := tx.UpdateQuestion(ctx, question); err != nil {
			return err
		}
		_, err := tx.RecalcStationMaxScore(ctx, question.StationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	station, err := s.store.GetStationByID(ctx, question.StationID)
	if err == nil {
		s.invalidateExamTree(station.ExamID)
	}

	return question, nil
}

// DeleteQuestion removes a question and recomputes the station max_score
func (s *ExamService) DeleteQuestion(ctx context.Context, questionID int64) error {
	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return err
	}

	err = s.store.InTreeTx(ctx, func(tx repositories.ExamTreeStore) error {
		if err := tx.DeleteQuestion(ctx, questionID); err != nil {
			return err
		}
		_, err := tx.RecalcStationMaxScore(ctx, question.StationID)
		return err
	})
	if err != nil {
		return err
	}

	station, err := s.store.GetStationByID(ctx, question.StationID)
	if err == nil {
		s.invalidateExamTree(station.ExamID)
	}

	return nil
}

// CreateOption adds an option to a choice question
func (s *ExamService) CreateOption(ctx context.Context, questionID int64, req *dto.CreateOptionPayload) (*models.Option, error) {
	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !question.Type.HasOptions() {
		return nil, apperrors.NewValidationError("options are only allowed on choice questions")
	}

	option := &models.Option{
		QuestionID: questionID,
		Text:       req.Text,
		IsCorrect:  req.IsCorrect,
		OrderIndex: req.OrderIndex,
	}

	id, err := s.store.InsertOption(ctx, option)
	if err != nil {
		return nil, err
	}
	option.ID = id

	s.invalidateQuestionTree(ctx, questionID)
	return option, nil
}

// invalidateQuestionTree drops the cached tree of the exam owning a question
func (s *ExamService) invalidateQuestionTree(ctx context.Context, questionID int64) {
	question, err := s.store.GetQuestionByID(ctx, questionID)
	if err != nil {
		return
	}
	if station, err := s.store.GetStationByID(ctx, question.StationID); err == nil {
		s.invalidateExamTree(station.ExamID)
	}
}

// ListOptions retrieves the options of a question
func (s *ExamService) ListOptions(ctx context.Context, questionID int64) ([]*models.Option, error) {
	if _, err := s.store.GetQuestionByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.store.GetOptionsByQuestion(ctx, questionID)
}

// UpdateOption updates an option
func (s *ExamService) UpdateOption(ctx context.Context, optionID int64, req *dto.CreateOptionPayload) (*models.Option, error) {
	option, err := s.store.GetOptionByID(ctx, optionID)
	if err != nil {
		return nil, err
	}

	option.Text = req.Text
	option.IsCorrect = req.IsCorrect
	option.OrderIndex = req.OrderIndex

	if err := s.store.UpdateOption(ctx, option); err != nil {
		return nil, err
	}

	s.invalidateQuestionTree(ctx, option.QuestionID)
	return option, nil
}

// DeleteOption removes an option
func (s *ExamService) DeleteOption(ctx context.Context, optionID int64) error {
	option, err := s.store.GetOptionByID(ctx, optionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteOption(ctx, optionID); err != nil {
		return err
	}
	s.invalidateQuestionTree(ctx, option.QuestionID)
	return nil
}

// DuplicateExam deep-copies an exam for a new application date: the exam row,
// every station, question and option in order, recomputed station max scores
// and the evaluator eligibility links. Everything happens in one transaction
// so a failed copy leaves nothing behind.
func (s *ExamService) DuplicateExam(ctx context.Context, sourceID int64, rawDate string) (int64, error) {
	newDate, err := helpers.ParseApplicationDate(rawDate)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid application date format")
	}

	source, err := s.store.GetExamByID(ctx, sourceID)
	if err != nil {
		return 0, err
	}

	var newExamID int64
	err = s.store.InTreeTx(ctx, func(tx repositories.ExamTreeStore) error {
		copied := &models.Exam{
			Title:       fmt.Sprintf("%s (%s)", source.Title, newDate.Format("2006-01-02")),
			Description: source.Description,
			AppliedAt:   &newDate,
			Status:      source.Status,
		}

		examID, err := tx.InsertExam(ctx, copied)
		if err != nil {
			return err
		}
		newExamID = examID

		stations, err := tx.GetStationsByExam(ctx, sourceID)
		if err != nil {
			return err
		}

		for _, station := range stations {
			newStation := &models.Station{
				ExamID:          examID,
				Title:           station.Title,
				Description:     station.Description,
				DurationMinutes: station.DurationMinutes,
				OrderIndex:      station.OrderIndex,
				IsActive:        station.IsActive,
			}
			newStationID, err := tx.InsertStation(ctx, newStation)
			if err != nil {
				return err
			}

			questions, err := tx.GetQuestionsByStation(ctx, station.ID)
			if err != nil {
				return err
			}

			for _, question := range questions {
				newQuestion := &models.Question{
					StationID:       newStationID,
					Text:            question.Text,
					Type:            question.Type,
					IsRequired:      question.IsRequired,
					OrderIndex:      question.OrderIndex,
					Points:          question.Points,
					MinValue:        question.MinValue,
					MaxValue:        question.MaxValue,
					ReferenceAnswer: question.ReferenceAnswer,
				}
				newQuestionID, err := tx.InsertQuestion(ctx, newQuestion)
				if err != nil {
					return err
				}

				if !question.Type.HasOptions() {
					continue
				}

				options, err := tx.GetOptionsByQuestion(ctx, question.ID)
				if err != nil {
					return err
				}
				for _, option := range options {
					newOption := &models.Option{
						QuestionID: newQuestionID,
						Text:       option.Text,
						IsCorrect:  option.IsCorrect,
						OrderIndex: option.OrderIndex,
					}
					if _, err := tx.InsertOption(ctx, newOption); err != nil {
						return err
					}
				}
			}

			if _, err := tx.RecalcStationMaxScore(ctx, newStationID); err != nil {
				return err
			}
		}

		evaluatorIDs, err := tx.GetEvaluatorIDsByExam(ctx, sourceID)
		if err != nil {
			return err
		}
		for _, evaluatorID := range evaluatorIDs {
			if err := tx.LinkEvaluatorToExam(ctx, evaluatorID, examID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("sourceExamID", sourceID).Msg("Exam duplication failed")
		return 0, err
	}

	logger.Info().Int64("sourceExamID", sourceID).Int64("newExamID", newExamID).Msg("Exam duplicated")
	return newExamID, nil
}

var examTreeKeyPattern = regexp.MustCompile(`^exam_tree:`)

// SweepStatuses deactivates ACTIVO exams whose application date has passed.
// MarkExpiredInactive only reports a count, so any flip drops every cached
// exam tree rather than serving a stale ACTIVO status until the TTL runs out.
func (s *ExamService) SweepStatuses(ctx context.Context) (int64, error) {
	count, err := s.store.MarkExpiredInactive(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		if s.cache != nil {
			s.cache.InvalidatePattern(examTreeKeyPattern)
		}
		logger.Info().Int64("deactivated", count).Msg("Status sweep deactivated expired exams")
	}
	return count, nil
}
