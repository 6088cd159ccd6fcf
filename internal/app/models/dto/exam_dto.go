package dto

// CreateExamRequest creates a new exam definition. Only the title is
// mandatory; the exam starts in DRAFT unless a status is given.
type CreateExamRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	AppliedAt   *string `json:"appliedAt"`
	Status      string  `json:"status"`
}

// UpdateExamRequest updates scalar exam fields.
type UpdateExamRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	AppliedAt   *string `json:"appliedAt"`
	Status      string  `json:"status"`
}

// DuplicateExamRequest requests a deep copy of an exam for a new date.
type DuplicateExamRequest struct {
	AppliedAt string `json:"appliedAt" binding:"required"`
}

// DuplicateExamResponse returns the id of the copied exam.
type DuplicateExamResponse struct {
	NewExamID int64 `json:"newExamId"`
}

// CreateStationRequest adds a station under an exam.
type CreateStationRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
	OrderIndex      int    `json:"orderIndex"`
	IsActive        *bool  `json:"isActive"`
}

// CreateOptionPayload is an inline option used when creating choice
// questions. Options are always persisted as separate rows.
type CreateOptionPayload struct {
	Text       string `json:"text" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
	OrderIndex int    `json:"orderIndex"`
}

// CreateQuestionRequest adds a question under a station, optionally with
// inline options for choice types.
type CreateQuestionRequest struct {
	Text            string                `json:"text" binding:"required"`
	Type            string                `json:"type" binding:"required"`
	IsRequired      bool                  `json:"isRequired"`
	OrderIndex      int                   `json:"orderIndex"`
	Points          float64               `json:"points"`
	MinValue        *float64              `json:"minValue"`
	MaxValue        *float64              `json:"maxValue"`
	ReferenceAnswer *string               `json:"referenceAnswer"`
	Options         []CreateOptionPayload `json:"options"`
}
