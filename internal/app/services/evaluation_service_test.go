package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/app/repositories"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
)

type answerKey struct {
	assignmentID int64
	questionID   int64
}

type resultKey struct {
	assignmentID int64
	stationID    int64
}

// fakeEvalStore is an in-memory evaluationStore. InEvalTx stages a copy and
// commits it only when the closure succeeds.
type fakeEvalStore struct {
	nextID      int64
	assignments map[int64]*models.StudentExam
	answers     map[answerKey]*models.StudentAnswer
	results     map[resultKey]*models.StationResult

	failUpsertAnswerForQuestion int64
}

func newFakeEvalStore() *fakeEvalStore {
	return &fakeEvalStore{
		assignments: map[int64]*models.StudentExam{},
		answers:     map[answerKey]*models.StudentAnswer{},
		results:     map[resultKey]*models.StationResult{},
	}
}

func (f *fakeEvalStore) clone() *fakeEvalStore {
	c := newFakeEvalStore()
	c.nextID = f.nextID
	c.failUpsertAnswerForQuestion = f.failUpsertAnswerForQuestion
	for id, a := range f.assignments {
		cp := *a
		c.assignments[id] = &cp
	}
	for k, a := range f.answers {
		cp := *a
		c.answers[k] = &cp
	}
	for k, r := range f.results {
		cp := *r
		c.results[k] = &cp
	}
	return c
}

func (f *fakeEvalStore) adopt(staged *fakeEvalStore) {
	f.nextID = staged.nextID
	f.assignments = staged.assignments
	f.answers = staged.answers
	f.results = staged.results
}

func (f *fakeEvalStore) InEvalTx(ctx context.Context, fn func(repositories.EvaluationStore) error) error {
	staged := f.clone()
	if err := fn(staged); err != nil {
		return err
	}
	f.adopt(staged)
	return nil
}

func (f *fakeEvalStore) newID() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeEvalStore) addAssignment(assignment *models.StudentExam) int64 {
	id := f.newID()
	cp := *assignment
	cp.ID = id
	f.assignments[id] = &cp
	return id
}

func (f *fakeEvalStore) GetAssignmentByID(ctx context.Context, id int64) (*models.StudentExam, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	cp := *assignment
	return &cp, nil
}

func (f *fakeEvalStore) SaveAssignmentState(ctx context.Context, assignment *models.StudentExam) error {
	if _, ok := f.assignments[assignment.ID]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	cp := *assignment
	f.assignments[assignment.ID] = &cp
	return nil
}

func (f *fakeEvalStore) UpsertAnswer(ctx context.Context, answer *models.StudentAnswer) error {
	if f.failUpsertAnswerForQuestion != 0 && answer.QuestionID == f.failUpsertAnswerForQuestion {
		return errors.New("forced answer upsert failure")
	}
	key := answerKey{answer.StudentExamID, answer.QuestionID}
	if existing, ok := f.answers[key]; ok {
		answer.ID = existing.ID
	} else {
		answer.ID = f.newID()
	}
	answer.AnsweredAt = time.Now()
	cp := *answer
	f.answers[key] = &cp
	return nil
}

func (f *fakeEvalStore) UpsertStationResult(ctx context.Context, result *models.StationResult) error {
	key := resultKey{result.StudentExamID, result.StationID}
	if existing, ok := f.results[key]; ok {
		result.ID = existing.ID
	} else {
		result.ID = f.newID()
	}
	result.RecordedAt = time.Now()
	cp := *result
	f.results[key] = &cp
	return nil
}

func (f *fakeEvalStore) SumStationScores(ctx context.Context, studentExamID int64) (float64, error) {
	total := 0.0
	for k, r := range f.results {
		if k.assignmentID == studentExamID {
			total += r.Score
		}
	}
	return total, nil
}

func (f *fakeEvalStore) GetAnswersByAssignment(ctx context.Context, studentExamID int64) ([]*models.StudentAnswer, error) {
	var out []*models.StudentAnswer
	for k, a := range f.answers {
		if k.assignmentID == studentExamID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (f *fakeEvalStore) GetStationResultsByAssignment(ctx context.Context, studentExamID int64) ([]*models.StationResult, error) {
	var out []*models.StationResult
	for k, r := range f.results {
		if k.assignmentID == studentExamID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out, nil
}

func (f *fakeEvalStore) ListAssignmentsByEvaluator(ctx context.Context, evaluatorID int64) ([]*models.StudentExam, error) {
	var out []*models.StudentExam
	for _, a := range f.assignments {
		if a.EvaluatorID != nil && *a.EvaluatorID == evaluatorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// evalFixture wires an evaluation service over a seeded exam tree and one
// pending assignment.
type evalFixture struct {
	svc          *EvaluationService
	store        *fakeEvalStore
	exams        *fakeExamStore
	assignmentID int64
	stationID    int64
	questionIDs  []int64
	maxScore     float64
}

func newEvalFixture(t *testing.T) *evalFixture {
	t.Helper()
	exams := newFakeExamStore()
	examID, fullStationID, _ := seedExamTree(t, exams)

	questions, err := exams.GetQuestionsByStation(context.Background(), fullStationID)
	require.NoError(t, err)
	var questionIDs []int64
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}

	store := newFakeEvalStore()
	assignmentID := store.addAssignment(&models.StudentExam{
		StudentID: 10,
		ExamID:    examID,
		Status:    models.AssignmentPending,
		AnonCode:  "EX20260310-ABCD1234",
	})

	station, err := exams.GetStationByID(context.Background(), fullStationID)
	require.NoError(t, err)

	return &evalFixture{
		svc:          NewEvaluationService(store, exams),
		store:        store,
		exams:        exams,
		assignmentID: assignmentID,
		stationID:    fullStationID,
		questionIDs:  questionIDs,
		maxScore:     station.MaxScore,
	}
}

func TestStartAssignmentClaimsAndTransitions(t *testing.T) {
	fx := newEvalFixture(t)

	updated, err := fx.svc.StartAssignment(context.Background(), 5, fx.assignmentID)
	require.NoError(t, err)

	assert.Equal(t, models.AssignmentInProgress, updated.Status)
	require.NotNil(t, updated.EvaluatorID)
	assert.Equal(t, int64(5), *updated.EvaluatorID)
	assert.NotNil(t, updated.StartedAt)

	stored, err := fx.store.GetAssignmentByID(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentInProgress, stored.Status)
}

func TestStartAssignmentClaimedByOtherEvaluatorRejected(t *testing.T) {
	fx := newEvalFixture(t)

	_, err := fx.svc.StartAssignment(context.Background(), 5, fx.assignmentID)
	require.NoError(t, err)

	_, err = fx.svc.StartAssignment(context.Background(), 9, fx.assignmentID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestStartCompletedAssignmentRejected(t *testing.T) {
	fx := newEvalFixture(t)
	finalize(t, fx, 5)

	_, err := fx.svc.StartAssignment(context.Background(), 5, fx.assignmentID)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentCompleted)
}

func TestRecordAnswerBatchUpsertIsIdempotent(t *testing.T) {
	fx := newEvalFixture(t)

	req := &dto.BatchAnswersRequest{
		AssignmentID: fx.assignmentID,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 4},
			{QuestionID: fx.questionIDs[1], AnswerText: "Clear S1/S2", PointsAwarded: 3},
		},
	}
	require.NoError(t, fx.svc.RecordAnswerBatch(context.Background(), 5, req))

	// Resubmitting overwrites rather than duplicating
	req.Answers[1].PointsAwarded = 5
	require.NoError(t, fx.svc.RecordAnswerBatch(context.Background(), 5, req))

	answers, err := fx.store.GetAnswersByAssignment(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, 5.0, answers[1].PointsAwarded)
}

func TestRecordAnswerBatchIsAtomic(t *testing.T) {
	fx := newEvalFixture(t)
	fx.store.failUpsertAnswerForQuestion = fx.questionIDs[1]

	req := &dto.BatchAnswersRequest{
		AssignmentID: fx.assignmentID,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 4},
			{QuestionID: fx.questionIDs[1], AnswerText: "Muffled", PointsAwarded: 2},
		},
	}
	require.Error(t, fx.svc.RecordAnswerBatch(context.Background(), 5, req))

	answers, err := fx.store.GetAnswersByAssignment(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestRecordAnswerBatchRejectsOverAward(t *testing.T) {
	fx := newEvalFixture(t)

	err := fx.svc.RecordAnswerBatch(context.Background(), 5, &dto.BatchAnswersRequest{
		AssignmentID: fx.assignmentID,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 99},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRecordAnswerBatchRejectsMissingQuestionID(t *testing.T) {
	fx := newEvalFixture(t)

	err := fx.svc.RecordAnswerBatch(context.Background(), 5, &dto.BatchAnswersRequest{
		AssignmentID: fx.assignmentID,
		Answers: []dto.AnswerItem{
			{AnswerText: "orphan answer", PointsAwarded: 1},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.NotErrorIs(t, err, apperrors.ErrQuestionNotFound)
}

func TestRecordAnswerBatchEmptyRejected(t *testing.T) {
	fx := newEvalFixture(t)

	err := fx.svc.RecordAnswerBatch(context.Background(), 5, &dto.BatchAnswersRequest{
		AssignmentID: fx.assignmentID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func finalize(t *testing.T, fx *evalFixture, evaluatorID int64) *models.StudentExam {
	t.Helper()
	updated, err := fx.svc.FinalizeStation(context.Background(), evaluatorID, fx.assignmentID, &dto.AssignmentActionRequest{
		Action:       models.AssignmentEventFinalize,
		StationID:    fx.stationID,
		StationScore: 7.5,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 4},
		},
		Remarks:     "Solid auscultation",
		ExamRemarks: "Confident overall",
	})
	require.NoError(t, err)
	return updated
}

func TestFinalizeStationDerivesAggregateFromStoredResults(t *testing.T) {
	fx := newEvalFixture(t)

	updated := finalize(t, fx, 5)

	assert.Equal(t, models.AssignmentCompleted, updated.Status)
	require.NotNil(t, updated.AggregateScore)
	assert.Equal(t, 7.5, *updated.AggregateScore)
	assert.NotNil(t, updated.FinishedAt)
	assert.Equal(t, "Confident overall", updated.Remarks)

	results, err := fx.store.GetStationResultsByAssignment(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 7.5, results[0].Score)
	assert.Equal(t, "Solid auscultation", results[0].Remarks)
}

func TestFinalizeTwiceRejected(t *testing.T) {
	fx := newEvalFixture(t)
	finalize(t, fx, 5)

	_, err := fx.svc.FinalizeStation(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action:       models.AssignmentEventFinalize,
		StationID:    fx.stationID,
		StationScore: 1,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 1},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentCompleted)
}

func TestFinalizeRejectsScoreAboveStationMax(t *testing.T) {
	fx := newEvalFixture(t)

	_, err := fx.svc.FinalizeStation(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action:       models.AssignmentEventFinalize,
		StationID:    fx.stationID,
		StationScore: fx.maxScore + 1,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 4},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestFinalizeRejectsStationFromAnotherExam(t *testing.T) {
	fx := newEvalFixture(t)

	otherExamID, err := fx.exams.InsertExam(context.Background(), &models.Exam{
		Title: "Other", Status: models.ExamStatusActive,
	})
	require.NoError(t, err)
	foreignStationID, err := fx.exams.InsertStation(context.Background(), &models.Station{
		ExamID: otherExamID, Title: "Foreign", IsActive: true,
	})
	require.NoError(t, err)

	_, err = fx.svc.FinalizeStation(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action:    models.AssignmentEventFinalize,
		StationID: foreignStationID,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 0},
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestFinalizeWithoutAnswersRejected(t *testing.T) {
	fx := newEvalFixture(t)

	_, err := fx.svc.FinalizeStation(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action:       models.AssignmentEventFinalize,
		StationID:    fx.stationID,
		StationScore: 3,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	stored, err := fx.store.GetAssignmentByID(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentPending, stored.Status)
	assert.Nil(t, stored.AggregateScore)
}

func TestFinalizeIsAtomicUnderFailure(t *testing.T) {
	fx := newEvalFixture(t)
	fx.store.failUpsertAnswerForQuestion = fx.questionIDs[0]

	_, err := fx.svc.FinalizeStation(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action:       models.AssignmentEventFinalize,
		StationID:    fx.stationID,
		StationScore: 7.5,
		Answers: []dto.AnswerItem{
			{QuestionID: fx.questionIDs[0], AnswerText: "Systolic", PointsAwarded: 4},
		},
	})
	require.Error(t, err)

	answers, err := fx.store.GetAnswersByAssignment(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	assert.Empty(t, answers)

	results, err := fx.store.GetStationResultsByAssignment(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	assert.Empty(t, results)

	stored, err := fx.store.GetAssignmentByID(context.Background(), fx.assignmentID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentPending, stored.Status)
	assert.Nil(t, stored.AggregateScore)
	assert.Nil(t, stored.FinishedAt)
}

func TestFinalizeWithoutStationRejected(t *testing.T) {
	fx := newEvalFixture(t)

	_, err := fx.svc.FinalizeStation(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action: models.AssignmentEventFinalize,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestApplyActionDispatch(t *testing.T) {
	fx := newEvalFixture(t)

	updated, err := fx.svc.ApplyAction(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action: models.AssignmentEventStart,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentInProgress, updated.Status)

	_, err = fx.svc.ApplyAction(context.Background(), 5, fx.assignmentID, &dto.AssignmentActionRequest{
		Action: "cancelar",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGetResultsAssemblesView(t *testing.T) {
	fx := newEvalFixture(t)
	finalize(t, fx, 5)

	view, err := fx.svc.GetResults(context.Background(), fx.assignmentID)
	require.NoError(t, err)

	assert.Equal(t, fx.assignmentID, view.AssignmentID)
	assert.Equal(t, "EX20260310-ABCD1234", view.AnonCode)
	assert.Equal(t, string(models.AssignmentCompleted), view.Status)
	assert.Equal(t, "Confident overall", view.Remarks)

	require.Len(t, view.Stations, 2)
	scored := view.Stations[0]
	require.NotNil(t, scored.AwardedScore)
	assert.Equal(t, 7.5, *scored.AwardedScore)
	assert.Equal(t, fx.maxScore, scored.MaxScore)
	assert.Nil(t, view.Stations[1].AwardedScore)

	assert.Equal(t, fx.maxScore, view.TotalPossible)
	assert.Equal(t, 7.5, view.TotalAwarded)

	require.Len(t, scored.Questions, 2)
	answered := scored.Questions[0]
	require.NotNil(t, answered.Answer)
	assert.Equal(t, "Systolic", *answered.Answer)
	assert.Equal(t, "Systolic", answered.CorrectAnswer)
	assert.Nil(t, scored.Questions[1].Answer)
}

func TestListAssignmentsFiltersByEvaluator(t *testing.T) {
	fx := newEvalFixture(t)

	_, err := fx.svc.StartAssignment(context.Background(), 5, fx.assignmentID)
	require.NoError(t, err)

	mine, err := fx.svc.ListAssignments(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := fx.svc.ListAssignments(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, others)
}

// Walks the whole scoring lifecycle over in-memory stores: compose an exam,
// duplicate it for a new sitting, assign a student, then start, answer and
// finalize as an evaluator and read back the results view.
func TestScoringLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExamStore()
	examSvc := newExamServiceForTest(exams)

	appliedAt := "2026-05-20"
	exam, err := examSvc.CreateExam(ctx, &dto.CreateExamRequest{
		Title:     "ECOE Cardiología",
		AppliedAt: &appliedAt,
		Status:    string(models.ExamStatusActive),
	})
	require.NoError(t, err)

	station, err := examSvc.CreateStation(ctx, exam.ID, &dto.CreateStationRequest{Title: "Cardio"})
	require.NoError(t, err)

	_, err = examSvc.CreateQuestion(ctx, station.ID, &dto.CreateQuestionRequest{
		Text: "Interpret the ECG strip", Type: string(models.QuestionTypeSingleChoice), Points: 4,
		Options: []dto.CreateOptionPayload{
			{Text: "Atrial fibrillation", IsCorrect: true},
			{Text: "Sinus rhythm"},
		},
	})
	require.NoError(t, err)
	_, err = examSvc.CreateQuestion(ctx, station.ID, &dto.CreateQuestionRequest{
		Text: "Describe the auscultation findings", Type: string(models.QuestionTypeText), Points: 6,
	})
	require.NoError(t, err)

	newExamID, err := examSvc.DuplicateExam(ctx, exam.ID, "2026-11-12")
	require.NoError(t, err)

	copiedStations, err := exams.GetStationsByExam(ctx, newExamID)
	require.NoError(t, err)
	require.Len(t, copiedStations, 1)
	assert.Equal(t, 10.0, copiedStations[0].MaxScore)
	copiedQuestions, err := exams.GetQuestionsByStation(ctx, copiedStations[0].ID)
	require.NoError(t, err)
	require.Len(t, copiedQuestions, 2)

	students := &fakeStudentReader{students: map[int64]*models.Student{
		10: {ID: 10, EnrollmentID: "12345678", FirstName: "Ana", LastName: "Ruiz"},
	}}
	assignSvc := NewAssignmentService(newFakeAssignmentStore(), students, exams)
	assignment, err := assignSvc.AssignExam(ctx, &dto.AssignExamRequest{StudentID: 10, ExamID: newExamID})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentPending, assignment.Status)

	evalStore := newFakeEvalStore()
	assignmentID := evalStore.addAssignment(&models.StudentExam{
		StudentID: assignment.StudentID,
		ExamID:    assignment.ExamID,
		Status:    assignment.Status,
		AnonCode:  assignment.AnonCode,
	})
	evalSvc := NewEvaluationService(evalStore, exams)

	started, err := evalSvc.StartAssignment(ctx, 5, assignmentID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentInProgress, started.Status)

	require.NoError(t, evalSvc.RecordAnswerBatch(ctx, 5, &dto.BatchAnswersRequest{
		AssignmentID: assignmentID,
		Answers: []dto.AnswerItem{
			{QuestionID: copiedQuestions[0].ID, AnswerText: "Atrial fibrillation", PointsAwarded: 4},
		},
	}))

	finalized, err := evalSvc.FinalizeStation(ctx, 5, assignmentID, &dto.AssignmentActionRequest{
		Action:       models.AssignmentEventFinalize,
		StationID:    copiedStations[0].ID,
		StationScore: 8,
		Answers: []dto.AnswerItem{
			{QuestionID: copiedQuestions[1].ID, AnswerText: "Irregularly irregular pulse", PointsAwarded: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, finalized.Status)
	require.NotNil(t, finalized.AggregateScore)
	assert.Equal(t, 8.0, *finalized.AggregateScore)

	view, err := evalSvc.GetResults(ctx, assignmentID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, view.TotalAwarded)
	assert.Equal(t, 10.0, view.TotalPossible)
	require.Len(t, view.Stations, 1)
	require.Len(t, view.Stations[0].Questions, 2)
	assert.Equal(t, "Atrial fibrillation", view.Stations[0].Questions[0].CorrectAnswer)
}
