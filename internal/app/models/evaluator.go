package models

// Evaluator scores students during exam stations. Each evaluator owns a
// login account; ExamIDs lists the exams the evaluator is eligible for.
type Evaluator struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"userId"`
	Specialty  string  `json:"specialty,omitempty"`
	HospitalID *int64  `json:"hospitalId,omitempty"`
	User       *User   `json:"user,omitempty"`
	ExamIDs    []int64 `json:"examIds,omitempty"`
}
