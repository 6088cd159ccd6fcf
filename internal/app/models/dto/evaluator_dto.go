package dto

// CreateEvaluatorRequest creates an evaluator with their login account and
// eligibility links in one operation.
type CreateEvaluatorRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	FirstName  string  `json:"firstName" binding:"required"`
	LastName   string  `json:"lastName" binding:"required"`
	Specialty  string  `json:"specialty"`
	HospitalID *int64  `json:"hospitalId"`
	ExamIDs    []int64 `json:"examIds"`
}

// UpdateEvaluatorRequest updates evaluator attributes and eligibility.
type UpdateEvaluatorRequest struct {
	FirstName  string  `json:"firstName" binding:"required"`
	LastName   string  `json:"lastName" binding:"required"`
	Specialty  string  `json:"specialty"`
	HospitalID *int64  `json:"hospitalId"`
	ExamIDs    []int64 `json:"examIds"`
}

// CreateHospitalRequest registers a hospital.
type CreateHospitalRequest struct {
	Name    string `json:"name" binding:"required"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// CreateGroupRequest registers a student group.
type CreateGroupRequest struct {
	Name       string `json:"name" binding:"required"`
	CohortYear int    `json:"cohortYear"`
}
