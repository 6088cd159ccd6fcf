package models

import (
	"time"

	"github.com/looplab/fsm"
)

// Assignment lifecycle events, as exposed on the evaluator workflow endpoint.
const (
	AssignmentEventStart    = "iniciar"
	AssignmentEventFinalize = "finalizar"
)

// StudentExam links one student to one exam instance. AnonCode replaces the
// student identity while evaluators score. At most one row exists per
// (student, exam) pair.
type StudentExam struct {
	ID             int64            `json:"id"`
	StudentID      int64            `json:"studentId"`
	ExamID         int64            `json:"examId"`
	EvaluatorID    *int64           `json:"evaluatorId,omitempty"`
	Status         AssignmentStatus `json:"status"`
	AnonCode       string           `json:"anonCode"`
	StartedAt      *time.Time       `json:"startedAt,omitempty"`
	FinishedAt     *time.Time       `json:"finishedAt,omitempty"`
	AggregateScore *float64         `json:"aggregateScore,omitempty"`
	Remarks        string           `json:"remarks,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// NewAssignmentFSM builds the lifecycle state machine for an assignment,
// seeded with its current status. Finalize is reachable from Pendiente as
// well, matching the single-station flow where an evaluator scores a station
// without an explicit start.
func NewAssignmentFSM(current AssignmentStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: AssignmentEventStart, Src: []string{string(AssignmentPending)}, Dst: string(AssignmentInProgress)},
			{Name: AssignmentEventFinalize, Src: []string{string(AssignmentPending), string(AssignmentInProgress)}, Dst: string(AssignmentCompleted)},
		},
		fsm.Callbacks{},
	)
}

// StudentAnswer is an evaluator-recorded answer, unique per
// (assignment, question) and upserted on repeat submissions.
type StudentAnswer struct {
	ID            int64     `json:"id"`
	StudentExamID int64     `json:"studentExamId"`
	QuestionID    int64     `json:"questionId"`
	AnswerText    string    `json:"answerText"`
	PointsAwarded float64   `json:"pointsAwarded"`
	Comment       string    `json:"comment,omitempty"`
	AnsweredAt    time.Time `json:"answeredAt"`
}

// StationResult is the evaluator's score for one station of an assignment,
// unique per (assignment, station).
type StationResult struct {
	ID            int64     `json:"id"`
	StudentExamID int64     `json:"studentExamId"`
	StationID     int64     `json:"stationId"`
	Score         float64   `json:"score"`
	Remarks       string    `json:"remarks,omitempty"`
	RecordedAt    time.Time `json:"recordedAt"`
}
