package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/db"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
	"github.com/ecoehub/ecoe-backend/internal/pkg/helpers"
	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
	"github.com/ecoehub/ecoe-backend/internal/pkg/validation"
)

// StudentService manages the student roster and group membership
type StudentService struct {
	dbc         *db.PostgresDB
	studentRepo *repositories.StudentRepository
	groupRepo   *repositories.GroupRepository
}

// NewStudentService creates a new student service instance
func NewStudentService(dbc *db.PostgresDB, studentRepo *repositories.StudentRepository, groupRepo *repositories.GroupRepository) *StudentService {
	return &StudentService{dbc: dbc, studentRepo: studentRepo, groupRepo: groupRepo}
}

func validateStudentFields(enrollmentID, email string) error {
	if !validation.IsValidEnrollmentID(enrollmentID) {
		return apperrors.NewValidationError("enrollment ID must be 6 to 12 digits")
	}
	if email != "" && !validation.IsValidEmail(email) {
		return apperrors.NewValidationError("invalid email address")
	}
	return nil
}

// CreateStudent registers a student and, in the same transaction, joins the
// requested groups.
func (s *StudentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	if err := validateStudentFields(req.EnrollmentID, req.Email); err != nil {
		return nil, err
	}

	student := &models.Student{
		EnrollmentID: req.EnrollmentID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		HospitalID:   req.HospitalID,
	}

	err := s.dbc.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		id, err := s.studentRepo.WithTx(tx).CreateStudent(ctx, student)
		if err != nil {
			return err
		}
		student.ID = id

		groupRepo := s.groupRepo.WithTx(tx)
		for _, groupID := range req.GroupIDs {
			if err := groupRepo.AddStudentToGroup(ctx, groupID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("studentID", student.ID).Str("enrollmentID", student.EnrollmentID).Msg("Student created")
	return s.studentRepo.GetStudentByID(ctx, student.ID)
}

// GetStudent retrieves a student by ID
func (s *StudentService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetStudentByID(ctx, id)
}

// ListStudents retrieves a page of students plus the total count
func (s *StudentService) ListStudents(ctx context.Context, page, pageSize int) ([]*models.Student, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	return s.studentRepo.GetStudents(ctx, offset, limit)
}

// UpdateStudent updates a student's attributes
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	if err := validateStudentFields(req.EnrollmentID, req.Email); err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.EnrollmentID = req.EnrollmentID
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.HospitalID = req.HospitalID

	if err := s.studentRepo.UpdateStudent(ctx, student); err != nil {
		return nil, err
	}

	return s.studentRepo.GetStudentByID(ctx, id)
}

// DeleteStudent removes a student without exam history
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.studentRepo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// JoinGroup adds a student to a group; repeats are a no-op
func (s *StudentService) JoinGroup(ctx context.Context, studentID, groupID int64) error {
	if _, err := s.studentRepo.GetStudentByID(ctx, studentID); err != nil {
		return err
	}
	if _, err := s.groupRepo.GetGroupByID(ctx, groupID); err != nil {
		return err
	}
	return s.groupRepo.AddStudentToGroup(ctx, groupID, studentID)
}

// LeaveGroup removes a student from a group
func (s *StudentService) LeaveGroup(ctx context.Context, studentID, groupID int64) error {
	return s.groupRepo.RemoveStudentFromGroup(ctx, groupID, studentID)
}
