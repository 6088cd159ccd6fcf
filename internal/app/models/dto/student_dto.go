package dto

// CreateStudentRequest registers a student.
type CreateStudentRequest struct {
	EnrollmentID string  `json:"enrollmentId" binding:"required"`
	FirstName    string  `json:"firstName" binding:"required"`
	LastName     string  `json:"lastName" binding:"required"`
	Email        string  `json:"email"`
	HospitalID   *int64  `json:"hospitalId"`
	GroupIDs     []int64 `json:"groupIds"`
}

// UpdateStudentRequest updates a student's attributes.
type UpdateStudentRequest struct {
	EnrollmentID string `json:"enrollmentId" binding:"required"`
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email"`
	HospitalID   *int64 `json:"hospitalId"`
}

// AssignExamRequest links a student to an exam, optionally pre-assigning an
// evaluator.
type AssignExamRequest struct {
	StudentID   int64  `json:"studentId" binding:"required"`
	ExamID      int64  `json:"examId" binding:"required"`
	EvaluatorID *int64 `json:"evaluatorId"`
}
