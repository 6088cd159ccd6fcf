package dto

// AnswerItem is one per-question answer inside a batch.
type AnswerItem struct {
	QuestionID    int64   `json:"questionId"`
	AnswerText    string  `json:"answerText"`
	PointsAwarded float64 `json:"pointsAwarded"`
	Comment       string  `json:"comment"`
}

// BatchAnswersRequest records a batch of answers for one assignment.
type BatchAnswersRequest struct {
	AssignmentID int64        `json:"assignmentId" binding:"required"`
	Answers      []AnswerItem `json:"answers" binding:"required"`
}

// AssignmentActionRequest drives the evaluator workflow endpoint. Action is
// "iniciar" or "finalizar"; the finalize payload fields are ignored for start.
type AssignmentActionRequest struct {
	Action       string       `json:"action" binding:"required"`
	StationID    int64        `json:"stationId"`
	Answers      []AnswerItem `json:"answers"`
	StationScore float64      `json:"stationScore"`
	Remarks      string       `json:"remarks"`
	ExamRemarks  string       `json:"examRemarks"`
}

// QuestionResult is the per-question line of the results view.
type QuestionResult struct {
	QuestionID    int64    `json:"questionId"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Points        float64  `json:"points"`
	Answer        *string  `json:"answer,omitempty"`
	PointsAwarded *float64 `json:"pointsAwarded,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

// StationResultView is the per-station block of the results view.
type StationResultView struct {
	StationID    int64            `json:"stationId"`
	Title        string           `json:"title"`
	MaxScore     float64          `json:"maxScore"`
	AwardedScore *float64         `json:"awardedScore,omitempty"`
	Remarks      string           `json:"remarks,omitempty"`
	Questions    []QuestionResult `json:"questions"`
}

// ResultsView aggregates everything an evaluator or admin sees for one
// completed (or in-progress) assignment.
type ResultsView struct {
	AssignmentID  int64               `json:"assignmentId"`
	AnonCode      string              `json:"anonCode"`
	Status        string              `json:"status"`
	ExamID        int64               `json:"examId"`
	ExamTitle     string              `json:"examTitle"`
	Stations      []StationResultView `json:"stations"`
	TotalAwarded  float64             `json:"totalAwarded"`
	TotalPossible float64             `json:"totalPossible"`
	Remarks       string              `json:"remarks,omitempty"`
}

// SweepResponse reports how many exams the status sweep deactivated.
type SweepResponse struct {
	Deactivated int64 `json:"deactivated"`
}
