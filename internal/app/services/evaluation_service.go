package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// evaluationStore is everything the scoring workflow needs from persistence.
// *repositories.EvaluationRepository satisfies it.
type evaluationStore interface {
	repositories.EvaluationStore
	repositories.EvalTxRunner
	GetAnswersByAssignment(ctx context.Context, studentExamID int64) ([]*models.StudentAnswer, error)
	GetStationResultsByAssignment(ctx context.Context, studentExamID int64) ([]*models.StationResult, error)
	ListAssignmentsByEvaluator(ctx context.Context, evaluatorID int64) ([]*models.StudentExam, error)
}

// examTreeReader is the read-only slice of the exam tree the scoring workflow
// consults for validation and the results view.
type examTreeReader interface {
	GetExamByID(ctx context.Context, id int64) (*models.Exam, error)
	GetStationByID(ctx context.Context, id int64) (*models.Station, error)
	GetStationsByExam(ctx context.Context, examID int64) ([]*models.Station, error)
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	GetQuestionsByStation(ctx context.Context, stationID int64) ([]*models.Question, error)
	GetOptionsByQuestion(ctx context.Context, questionID int64) ([]*models.Option, error)
}

// EvaluationService runs the evaluator scoring workflow: claiming and
// starting assignments, recording answers, finalizing stations and serving
// the results view.
type EvaluationService struct {
	store evaluationStore
	exams examTreeReader
}

// NewEvaluationService creates a new evaluation service instance
func NewEvaluationService(store evaluationStore, exams examTreeReader) *EvaluationService {
	return &EvaluationService{store: store, exams: exams}
}

// claimCheck rejects work on an assignment already claimed by another
// evaluator. An unclaimed assignment is claimed by the caller.
func claimCheck(assignment *models.StudentExam, evaluatorID int64) error {
	if assignment.EvaluatorID != nil && *assignment.EvaluatorID != evaluatorID {
		return apperrors.ErrPermissionDenied
	}
	assignment.EvaluatorID = &evaluatorID
	return nil
}

// ListAssignments lists the assignments claimed by an evaluator
func (s *EvaluationService) ListAssignments(ctx context.Context, evaluatorID int64) ([]*models.StudentExam, error) {
	return s.store.ListAssignmentsByEvaluator(ctx, evaluatorID)
}

// GetAssignment retrieves one assignment
func (s *EvaluationService) GetAssignment(ctx context.Context, id int64) (*models.StudentExam, error) {
	return s.store.GetAssignmentByID(ctx, id)
}

// StartAssignment moves an assignment from Pendiente to En Progreso and
// claims it for the evaluator.
func (s *EvaluationService) StartAssignment(ctx context.Context, evaluatorID, assignmentID int64) (*models.StudentExam, error) {
	var updated *models.StudentExam
	err := s.store.InEvalTx(ctx, func(tx repositories.EvaluationStore) error {
		assignment, err := tx.GetAssignmentByID(ctx, assignmentID)
		if err != nil {
			return err
		}

		if err := claimCheck(assignment, evaluatorID); err != nil {
			return err
		}

		machine := models.NewAssignmentFSM(assignment.Status)
		if err := machine.Event(ctx, models.AssignmentEventStart); err != nil {
			if assignment.Status == models.AssignmentCompleted {
				return apperrors.ErrAssignmentCompleted
			}
			return apperrors.NewConflictError(
				fmt.Sprintf("cannot start assignment in status %s", assignment.Status))
		}

		now := time.Now()
		assignment.Status = models.AssignmentStatus(machine.Current())
		assignment.StartedAt = &now

		if err := tx.SaveAssignmentState(ctx, assignment); err != nil {
			return err
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("assignmentID", assignmentID).Int64("evaluatorID", evaluatorID).Msg("Assignment started")
	return updated, nil
}

// validateAnswer checks an answer item against its question definition
func (s *EvaluationService) validateAnswer(ctx context.Context, item *dto.AnswerItem) (*models.Question, error) {
	if item.QuestionID <= 0 {
		return nil, apperrors.NewValidationError("questionId is required for every answer")
	}

	question, err := s.exams.GetQuestionByID(ctx, item.QuestionID)
	if err != nil {
		return nil, err
	}

	if item.PointsAwarded < 0 || item.PointsAwarded > question.Points {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"awarded points for question %d must be between 0 and %.2f", question.ID, question.Points))
	}

	if question.IsRequired && item.AnswerText == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("question %d requires an answer", question.ID))
	}

	return question, nil
}

// RecordAnswerBatch upserts a batch of answers for an assignment. The whole
// batch lands or none of it does. Repeat submissions overwrite earlier rows.
func (s *EvaluationService) RecordAnswerBatch(ctx context.Context, evaluatorID int64, req *dto.BatchAnswersRequest) error {
	if len(req.Answers) == 0 {
		return apperrors.NewValidationError("answer batch is empty")
	}

	for i := range req.Answers {
		if _, err := s.validateAnswer(ctx, &req.Answers[i]); err != nil {
			return err
		}
	}

	return s.store.InEvalTx(ctx, func(tx repositories.EvaluationStore) error {
		assignment, err := tx.GetAssignmentByID(ctx, req.AssignmentID)
		if err != nil {
			return err
		}

		if assignment.Status == models.AssignmentCompleted {
			return apperrors.ErrAssignmentCompleted
		}

		if err := claimCheck(assignment, evaluatorID); err != nil {
			return err
		}

		for _, item := range req.Answers {
			answer := &models.StudentAnswer{
				StudentExamID: assignment.ID,
				QuestionID:    item.QuestionID,
				AnswerText:    item.AnswerText,
				PointsAwarded: item.PointsAwarded,
				Comment:       item.Comment,
			}
			if err := tx.UpsertAnswer(ctx, answer); err != nil {
				return err
			}
		}

		return tx.SaveAssignmentState(ctx, assignment)
	})
}

// FinalizeStation records the station score (and any remaining answers),
// derives the aggregate grade from the stored station results and moves the
// assignment to Completado, all in one transaction. The aggregate is never
// taken from the request. Finalizing a Completado assignment is rejected.
func (s *EvaluationService) FinalizeStation(ctx context.Context, evaluatorID, assignmentID int64, req *dto.AssignmentActionRequest) (*models.StudentExam, error) {
	if req.StationID <= 0 {
		return nil, apperrors.NewValidationError("stationId is required to finalize")
	}
	if len(req.Answers) == 0 {
		return nil, apperrors.NewValidationError("finalizing requires at least one answer")
	}

	station, err := s.exams.GetStationByID(ctx, req.StationID)
	if err != nil {
		return nil, err
	}

	if req.StationScore < 0 || req.StationScore > station.MaxScore {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"station score must be between 0 and %.2f", station.MaxScore))
	}

	for i := range req.Answers {
		if _, err := s.validateAnswer(ctx, &req.Answers[i]); err != nil {
			return nil, err
		}
	}

	var updated *models.StudentExam
	err = s.store.InEvalTx(ctx, func(tx repositories.EvaluationStore) error {
		assignment, err := tx.GetAssignmentByID(ctx, assignmentID)
		if err != nil {
			return err
		}

		if station.ExamID != assignment.ExamID {
			return apperrors.NewValidationError("station does not belong to the assignment's exam")
		}

		if err := claimCheck(assignment, evaluatorID); err != nil {
			return err
		}

		machine := models.NewAssignmentFSM(assignment.Status)
		if err := machine.Event(ctx, models.AssignmentEventFinalize); err != nil {
			if assignment.Status == models.AssignmentCompleted {
				return apperrors.ErrAssignmentCompleted
			}
			return apperrors.NewConflictError(
				fmt.Sprintf("cannot finalize assignment in status %s", assignment.Status))
		}

		for _, item := range req.Answers {
			answer := &models.StudentAnswer{
				StudentExamID: assignment.ID,
				QuestionID:    item.QuestionID,
				AnswerText:    item.AnswerText,
				PointsAwarded: item.PointsAwarded,
				Comment:       item.Comment,
			}
			if err := tx.UpsertAnswer(ctx, answer); err != nil {
				return err
			}
		}

		result := &models.StationResult{
			StudentExamID: assignment.ID,
			StationID:     req.StationID,
			Score:         req.StationScore,
			Remarks:       req.Remarks,
		}
		if err := tx.UpsertStationResult(ctx, result); err != nil {
			return err
		}

		total, err := tx.SumStationScores(ctx, assignment.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		assignment.Status = models.AssignmentStatus(machine.Current())
		assignment.FinishedAt = &now
		assignment.AggregateScore = &total
		if req.ExamRemarks != "" {
			assignment.Remarks = req.ExamRemarks
		}

		if err := tx.SaveAssignmentState(ctx, assignment); err != nil {
			return err
		}
		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("assignmentID", assignmentID).
		Int64("stationID", req.StationID).
		Float64("aggregateScore", *updated.AggregateScore).
		Msg("Assignment finalized")
	return updated, nil
}

// ApplyAction dispatches the workflow endpoint's action verb
func (s *EvaluationService) ApplyAction(ctx context.Context, evaluatorID, assignmentID int64, req *dto.AssignmentActionRequest) (*models.StudentExam, error) {
	switch req.Action {
	case models.AssignmentEventStart:
		return s.StartAssignment(ctx, evaluatorID, assignmentID)
	case models.AssignmentEventFinalize:
		return s.FinalizeStation(ctx, evaluatorID, assignmentID, req)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

// GetResults assembles the results view for an assignment: the exam tree
// annotated with recorded answers, per-station scores and the totals.
func (s *EvaluationService) GetResults(ctx context.Context, assignmentID int64) (*dto.ResultsView, error) {
	assignment, err := s.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	exam, err := s.exams.GetExamByID(ctx, assignment.ExamID)
	if err != nil {
		return nil, err
	}

	answers, err := s.store.GetAnswersByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	answersByQuestion := make(map[int64]*models.StudentAnswer, len(answers))
	for _, a := range answers {
		answersByQuestion[a.QuestionID] = a
	}

	results, err := s.store.GetStationResultsByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	resultsByStation := make(map[int64]*models.StationResult, len(results))
	for _, r := range results {
		resultsByStation[r.StationID] = r
	}

	stations, err := s.exams.GetStationsByExam(ctx, assignment.ExamID)
	if err != nil {
		return nil, err
	}

	view := &dto.ResultsView{
		AssignmentID: assignment.ID,
		AnonCode:     assignment.AnonCode,
		Status:       string(assignment.Status),
		ExamID:       exam.ID,
		ExamTitle:    exam.Title,
		Remarks:      assignment.Remarks,
	}

	for _, station := range stations {
		block := dto.StationResultView{
			StationID: station.ID,
			Title:     station.Title,
			MaxScore:  station.MaxScore,
		}
		view.TotalPossible += station.MaxScore

		if result, ok := resultsByStation[station.ID]; ok {
			score := result.Score
			block.AwardedScore = &score
			block.Remarks = result.Remarks
			view.TotalAwarded += score
		}

		questions, err := s.exams.GetQuestionsByStation(ctx, station.ID)
		if err != nil {
			return nil, err
		}

		for _, question := range questions {
			line := dto.QuestionResult{
				QuestionID: question.ID,
				Text:       question.Text,
				Type:       string(question.Type),
				Points:     question.Points,
			}

			if answer, ok := answersByQuestion[question.ID]; ok {
				text := answer.AnswerText
				awarded := answer.PointsAwarded
				line.Answer = &text
				line.PointsAwarded = &awarded
				line.Comment = answer.Comment
			}

			switch {
			case question.Type.HasOptions():
				options, err := s.exams.GetOptionsByQuestion(ctx, question.ID)
				if err != nil {
					return nil, err
				}
				for _, option := range options {
					if option.IsCorrect {
						if line.CorrectAnswer != "" {
							line.CorrectAnswer += ", "
						}
						line.CorrectAnswer += option.Text
					}
				}
			case question.ReferenceAnswer != nil:
				line.CorrectAnswer = *question.ReferenceAnswer
			}

			block.Questions = append(block.Questions, line)
		}

		view.Stations = append(view.Stations, block)
	}

	return view, nil
}
