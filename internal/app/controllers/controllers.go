package controllers

import (
	"github.com/ecoehub/ecoe-backend/internal/app/services"
)

// Controllers bundles every controller for route registration
type Controllers struct {
	Auth        *AuthController
	Exams       *ExamController
	Assignments *AssignmentController
	Evaluations *EvaluationController
	Students    *StudentController
	Evaluators  *EvaluatorController
	Hospitals   *HospitalController
	Groups      *GroupController
}

// NewControllers wires all controllers over the services
func NewControllers(svc *services.Services) *Controllers {
	return &Controllers{
		Auth:        NewAuthController(svc.Auth),
		Exams:       NewExamController(svc.Exams),
		Assignments: NewAssignmentController(svc.Assignments),
		Evaluations: NewEvaluationController(svc.Evaluations, svc.Evaluators),
		Students:    NewStudentController(svc.Students),
		Evaluators:  NewEvaluatorController(svc.Evaluators),
		Hospitals:   NewHospitalController(svc.Hospitals),
		Groups:      NewGroupController(svc.Groups),
	}
}
