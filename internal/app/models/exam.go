package models

import "time"

// Exam is the root of the exam definition tree. Stations hang off it in
// order_index order.
type Exam struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AppliedAt   *time.Time `json:"appliedAt,omitempty"`
	Status      ExamStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Stations    []*Station `json:"stations,omitempty"`
}

// Station is one scored checkpoint of an exam. MaxScore is derived from the
// points of its questions and kept in sync on every question write.
type Station struct {
	ID              int64       `json:"id"`
	ExamID          int64       `json:"examId"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	DurationMinutes int         `json:"durationMinutes"`
	OrderIndex      int         `json:"orderIndex"`
	IsActive        bool        `json:"isActive"`
	MaxScore        float64     `json:"maxScore"`
	Questions       []*Question `json:"questions,omitempty"`
}
