package services

import (
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/db"
	"github.com/ecoehub/ecoe-backend/internal/pkg/auth"
	"github.com/ecoehub/ecoe-backend/internal/pkg/cache"
)

// Services bundles every service for dependency injection
type Services struct {
	Auth        *AuthService
	Exams       *ExamService
	Assignments *AssignmentService
	Evaluations *EvaluationService
	Students    *StudentService
	Evaluators  *EvaluatorService
	Hospitals   *HospitalService
	Groups      *GroupService
}

// NewServices wires all services over the repositories
func NewServices(dbc *db.PostgresDB, repos *repositories.Repositories, jwt *auth.JWTService, c *cache.Cache) *Services {
	examService := NewExamService(repos.Exams, c)

	return &Services{
		Auth:        NewAuthService(repos.Users, repos.Tokens, jwt, examService),
		Exams:       examService,
		Assignments: NewAssignmentService(repos.Assignments, repos.Students, repos.Exams),
		Evaluations: NewEvaluationService(repos.Evaluations, repos.Exams),
		Students:    NewStudentService(dbc, repos.Students, repos.Groups),
		Evaluators:  NewEvaluatorService(dbc, repos.Evaluators, repos.Users),
		Hospitals:   NewHospitalService(repos.Hospitals, c),
		Groups:      NewGroupService(repos.Groups, c),
	}
}
