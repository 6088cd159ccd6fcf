package models

// Role identifies what a user account is allowed to do.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleEvaluator Role = "EVALUATOR"
)

// ExamStatus is the lifecycle state of an exam definition.
type ExamStatus string

const (
	ExamStatusDraft    ExamStatus = "DRAFT"
	ExamStatusActive   ExamStatus = "ACTIVO"
	ExamStatusInactive ExamStatus = "INACTIVO"
)

// AssignmentStatus is the lifecycle state of a student-exam assignment.
// Transitions are monotonic: Pendiente -> En Progreso -> Completado.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "Pendiente"
	AssignmentInProgress AssignmentStatus = "En Progreso"
	AssignmentCompleted  AssignmentStatus = "Completado"
)

// QuestionType determines how a question is answered and scored.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "TEXT"
	QuestionTypeNumeric        QuestionType = "NUMERIC"
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// HasOptions reports whether the question type carries option rows.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultipleChoice
}
