package services

import (
	"context"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoehub/ecoe-backend/internal/app/models"
	"github.com/ecoehub/ecoe-backend/internal/app/models/dto"
	"github.com/ecoehub/ecoe-backend/internal/pkg/apperrors"
)

type fakeAssignmentStore struct {
	nextID      int64
	assignments map[int64]*models.StudentExam
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{assignments: map[int64]*models.StudentExam{}}
}

func (f *fakeAssignmentStore) CreateAssignment(ctx context.Context, assignment *models.StudentExam) (int64, error) {
	for _, existing := range f.assignments {
		if existing.StudentID == assignment.StudentID && existing.ExamID == assignment.ExamID {
			return 0, apperrors.ErrAssignmentAlreadyExists
		}
	}
	f.nextID++
	cp := *assignment
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.assignments[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeAssignmentStore) GetAssignmentByID(ctx context.Context, id int64) (*models.StudentExam, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	cp := *assignment
	return &cp, nil
}

func (f *fakeAssignmentStore) ListAssignmentsByStudent(ctx context.Context, studentID int64) ([]*models.StudentExam, error) {
	var out []*models.StudentExam
	for _, a := range f.assignments {
		if a.StudentID == studentID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAssignmentStore) ListAssignmentsByExam(ctx context.Context, examID int64) ([]*models.StudentExam, error) {
	var out []*models.StudentExam
	for _, a := range f.assignments {
		if a.ExamID == examID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAssignmentStore) DeleteAssignment(ctx context.Context, id int64) error {
	if _, ok := f.assignments[id]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	delete(f.assignments, id)
	return nil
}

type fakeStudentReader struct {
	students map[int64]*models.Student
}

func (f *fakeStudentReader) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

func newAssignmentFixture(t *testing.T) (*AssignmentService, *fakeAssignmentStore, int64) {
	t.Helper()
	exams := newFakeExamStore()
	examID, _, _ := seedExamTree(t, exams)

	students := &fakeStudentReader{students: map[int64]*models.Student{
		10: {ID: 10, EnrollmentID: "12345678", FirstName: "Ana", LastName: "Ruiz"},
	}}

	store := newFakeAssignmentStore()
	return NewAssignmentService(store, students, exams), store, examID
}

func TestAssignExamCreatesPendingAssignment(t *testing.T) {
	svc, _, examID := newAssignmentFixture(t)

	assignment, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	require.NoError(t, err)

	assert.Equal(t, models.AssignmentPending, assignment.Status)
	assert.Nil(t, assignment.EvaluatorID)
	assert.Nil(t, assignment.StartedAt)
	assert.Nil(t, assignment.AggregateScore)
}

func TestAssignExamAnonCodeFormat(t *testing.T) {
	svc, _, examID := newAssignmentFixture(t)

	assignment, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	require.NoError(t, err)

	// Exam date prefix plus an 8-char uppercase hex fragment
	assert.Regexp(t, regexp.MustCompile(`^EX20260310-[0-9A-F]{8}$`), assignment.AnonCode)
}

func TestAssignExamWithoutDateUsesZeroPrefix(t *testing.T) {
	exams := newFakeExamStore()
	examID, err := exams.InsertExam(context.Background(), &models.Exam{Title: "No date", Status: models.ExamStatusDraft})
	require.NoError(t, err)

	students := &fakeStudentReader{students: map[int64]*models.Student{10: {ID: 10}}}
	svc := NewAssignmentService(newFakeAssignmentStore(), students, exams)

	assignment, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^EX00000000-[0-9A-F]{8}$`), assignment.AnonCode)
}

func TestAssignExamTwiceRejected(t *testing.T) {
	svc, _, examID := newAssignmentFixture(t)

	_, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	require.NoError(t, err)

	_, err = svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	assert.ErrorIs(t, err, apperrors.ErrAssignmentAlreadyExists)
}

func TestAssignExamUnknownStudentRejected(t *testing.T) {
	svc, _, examID := newAssignmentFixture(t)

	_, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 99, ExamID: examID})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestAssignExamUnknownExamRejected(t *testing.T) {
	svc, _, _ := newAssignmentFixture(t)

	_, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: 404})
	assert.ErrorIs(t, err, apperrors.ErrExamNotFound)
}

func TestListByStudentValidatesStudent(t *testing.T) {
	svc, _, examID := newAssignmentFixture(t)

	_, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	require.NoError(t, err)

	list, err := svc.ListByStudent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByStudent(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestUnassignRemovesAssignment(t *testing.T) {
	svc, store, examID := newAssignmentFixture(t)

	assignment, err := svc.AssignExam(context.Background(), &dto.AssignExamRequest{StudentID: 10, ExamID: examID})
	require.NoError(t, err)

	require.NoError(t, svc.Unassign(context.Background(), assignment.ID))

	_, err = store.GetAssignmentByID(context.Background(), assignment.ID)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}
