package repositories

import (
	"github.com/ecoehub/ecoe-backend/internal/db"
)

// Repositories bundles every repository for dependency injection
type Repositories struct {
	Users       *UserRepository
	Tokens      *TokenRepository
	Hospitals   *HospitalRepository
	Groups      *GroupRepository
	Students    *StudentRepository
	Evaluators  *EvaluatorRepository
	Exams       *ExamRepository
	Assignments *AssignmentRepository
	Evaluations *EvaluationRepository
}

// NewRepositories creates all repositories backed by the given database
func NewRepositories(dbc *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(dbc.Pool),
		Tokens:      NewTokenRepository(dbc.Pool),
		Hospitals:   NewHospitalRepository(dbc.Pool),
		Groups:      NewGroupRepository(dbc.Pool),
		Students:    NewStudentRepository(dbc.Pool),
		Evaluators:  NewEvaluatorRepository(dbc.Pool),
		Exams:       NewExamRepository(dbc),
		Assignments: NewAssignmentRepository(dbc.Pool),
		Evaluations: NewEvaluationRepository(dbc),
	}
}
