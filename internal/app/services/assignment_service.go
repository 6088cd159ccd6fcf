package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// assignmentStore is the persistence surface of assignment management
type assignmentStore interface {
	CreateAssignment(ctx context.Context, assignment *models.StudentExam) (int64, error)
	GetAssignmentByID(ctx context.Context, id int64) (*models.StudentExam, error)
	ListAssignmentsByStudent(ctx context.Context, studentID int64) ([]*models.StudentExam, error)
	ListAssignmentsByExam(ctx context.Context, examID int64) ([]*models.StudentExam, error)
	DeleteAssignment(ctx context.Context, id int64) error
}

// studentReader resolves students for assignment validation
type studentReader interface {
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
}

// examReader resolves exams for assignment validation
type examReader interface {
	GetExamByID(ctx context.Context, id int64) (*models.Exam, error)
}

// AssignmentService links students to exam instances. Scoring lives in
// EvaluationService; this service only manages the links themselves.
type AssignmentService struct {
	store    assignmentStore
	students studentReader
	exams    examReader
}

// NewAssignmentService creates a new assignment service instance
func NewAssignmentService(store assignmentStore, students studentReader, exams examReader) *AssignmentService {
	return &AssignmentService{store: store, students: students, exams: exams}
}

// buildAnonCode derives the pseudonymous code evaluators see instead of the
// student identity. The exam date prefix keeps codes sortable per sitting;
// the uuid fragment makes them unguessable.
func buildAnonCode(exam *models.Exam) string {
	datePart := "00000000"
	if exam.AppliedAt != nil {
		datePart = exam.AppliedAt.Format("20060102")
	}
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("EX%s-%s", datePart, fragment)
}

// AssignExam links a student to an exam. The unique (student, exam)
// constraint rejects double assignment.
func (s *AssignmentService) AssignExam(ctx context.Context, req *dto.AssignExamRequest) (*models.StudentExam, error) {
	if _, err := s.students.GetStudentByID(ctx, req.StudentID); err != nil {
		return nil, err
	}

	exam, err := s.exams.GetExamByID(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	assignment := &models.StudentExam{
		StudentID:   req.StudentID,
		ExamID:      req.ExamID,
		EvaluatorID: req.EvaluatorID,
		Status:      models.AssignmentPending,
		AnonCode:    buildAnonCode(exam),
	}

	id, err := s.store.CreateAssignment(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id

	logger.Info().
		Int64("assignmentID", id).
		Int64("studentID", req.StudentID).
		Int64("examID", req.ExamID).
		Str("anonCode", assignment.AnonCode).
		Msg("Student assigned to exam")

	return s.store.GetAssignmentByID(ctx, id)
}

// GetAssignment retrieves one assignment
func (s *AssignmentService) GetAssignment(ctx context.Context, id int64) (*models.StudentExam, error) {
	return s.store.GetAssignmentByID(ctx, id)
}

// ListByStudent lists a student's assignments
func (s *AssignmentService) ListByStudent(ctx context.Context, studentID int64) ([]*models.StudentExam, error) {
	if _, err := s.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.store.ListAssignmentsByStudent(ctx, studentID)
}

// ListByExam lists an exam's assignments
func (s *AssignmentService) ListByExam(ctx context.Context, examID int64) ([]*models.StudentExam, error) {
	if _, err := s.exams.GetExamByID(ctx, examID); err != nil {
		return nil, err
	}
	return s.store.ListAssignmentsByExam(ctx, examID)
}

// Unassign removes an assignment and its recorded answers and results
func (s *AssignmentService) Unassign(ctx context.Context, id int64) error {
	return s.store.DeleteAssignment(ctx, id)
}
