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
	"github.com/ecoehub/ecoe-backend/internal/pkg/cache"
)

// fakeExamStore is an in-memory examDefinitionStore. InTreeTx works on a
// staged copy that only replaces the live state when the closure succeeds,
// mirroring the repository's transaction semantics.
type fakeExamStore struct {
	nextID         int64
	exams          map[int64]*models.Exam
	stations       map[int64]*models.Station
	questions      map[int64]*models.Question
	options        map[int64]*models.Option
	evaluatorLinks map[int64][]int64
	hasAssignments map[int64]bool

	failInsertOption bool
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{
		exams:          map[int64]*models.Exam{},
		stations:       map[int64]*models.Station{},
		questions:      map[int64]*models.Question{},
		options:        map[int64]*models.Option{},
		evaluatorLinks: map[int64][]int64{},
		hasAssignments: map[int64]bool{},
	}
}

func (f *fakeExamStore) newID() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeExamStore) clone() *fakeExamStore {
	c := newFakeExamStore()
	c.nextID = f.nextID
	c.failInsertOption = f.failInsertOption
	for id, e := range f.exams {
		cp := *e
		c.exams[id] = &cp
	}
	for id, s := range f.stations {
		cp := *s
		c.stations[id] = &cp
	}
	for id, q := range f.questions {
		cp := *q
		c.questions[id] = &cp
	}
	for id, o := range f.options {
		cp := *o
		c.options[id] = &cp
	}
	for id, links := range f.evaluatorLinks {
		c.evaluatorLinks[id] = append([]int64{}, links...)
	}
	for id, v := range f.hasAssignments {
		c.hasAssignments[id] = v
	}
	return c
}

func (f *fakeExamStore) adopt(staged *fakeExamStore) {
	f.nextID = staged.nextID
	f.exams = staged.exams
	f.stations = staged.stations
	f.questions = staged.questions
	f.options = staged.options
	f.evaluatorLinks = staged.evaluatorLinks
	f.hasAssignments = staged.hasAssignments
}

func (f *fakeExamStore) InTreeTx(ctx context.Context, fn func(repositories.ExamTreeStore) error) error {
	staged := f.clone()
	if err := fn(staged); err != nil {
		return err
	}
	f.adopt(staged)
	return nil
}

func (f *fakeExamStore) GetExamByID(ctx context.Context, id int64) (*models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, apperrors.ErrExamNotFound
	}
	cp := *exam
	cp.Stations = nil
	return &cp, nil
}

func (f *fakeExamStore) InsertExam(ctx context.Context, exam *models.Exam) (int64, error) {
	id := f.newID()
	cp := *exam
	cp.ID = id
	f.exams[id] = &cp
	return id, nil
}

func (f *fakeExamStore) GetStationsByExam(ctx context.Context, examID int64) ([]*models.Station, error) {
	var out []*models.Station
	for _, s := range f.stations {
		if s.ExamID == examID {
			cp := *s
			cp.Questions = nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeExamStore) InsertStation(ctx context.Context, station *models.Station) (int64, error) {
	if _, ok := f.exams[station.ExamID]; !ok {
		return 0, apperrors.ErrExamNotFound
	}
	id := f.newID()
	cp := *station
	cp.ID = id
	f.stations[id] = &cp
	return id, nil
}

func (f *fakeExamStore) GetQuestionsByStation(ctx context.Context, stationID int64) ([]*models.Question, error) {
	var out []*models.Question
	for _, q := range f.questions {
		if q.StationID == stationID {
			cp := *q
			cp.Options = nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeExamStore) InsertQuestion(ctx context.Context, question *models.Question) (int64, error) {
	if _, ok := f.stations[question.StationID]; !ok {
		return 0, apperrors.ErrStationNotFound
	}
	id := f.newID()
	cp := *question
	cp.ID = id
	f.questions[id] = &cp
	return id, nil
}

func (f *fakeExamStore) UpdateQuestion(ctx context.Context, question *models.Question) error {
	if _, ok := f.questions[question.ID]; !ok {
		return apperrors.ErrQuestionNotFound
	}
	cp := *question
	f.questions[question.ID] = &cp
	return nil
}

func (f *fakeExamStore) DeleteQuestion(ctx context.Context, id int64) error {
	if _, ok := f.questions[id]; !ok {
		return apperrors.ErrQuestionNotFound
	}
	delete(f.questions, id)
	for optID, opt := range f.options {
		if opt.QuestionID == id {
			delete(f.options, optID)
		}
	}
	return nil
}

func (f *fakeExamStore) GetOptionsByQuestion(ctx context.Context, questionID int64) ([]*models.Option, error) {
	var out []*models.Option
	for _, o := range f.options {
		if o.QuestionID == questionID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeExamStore) InsertOption(ctx context.Context, option *models.Option) (int64, error) {
	if f.failInsertOption {
		return 0, errors.New("forced option insert failure")
	}
	if _, ok := f.questions[option.QuestionID]; !ok {
		return 0, apperrors.ErrQuestionNotFound
	}
	id := f.newID()
	cp := *option
	cp.ID = id
	f.options[id] = &cp
	return id, nil
}

func (f *fakeExamStore) RecalcStationMaxScore(ctx context.Context, stationID int64) (float64, error) {
	station, ok := f.stations[stationID]
	if !ok {
		return 0, apperrors.ErrStationNotFound
	}
	total := 0.0
	for _, q := range f.questions {
		if q.StationID == stationID {
			total += q.Points
		}
	}
	station.MaxScore = total
	return total, nil
}

func (f *fakeExamStore) GetEvaluatorIDsByExam(ctx context.Context, examID int64) ([]int64, error) {
	return append([]int64{}, f.evaluatorLinks[examID]...), nil
}

func (f *fakeExamStore) LinkEvaluatorToExam(ctx context.Context, evaluatorID, examID int64) error {
	f.evaluatorLinks[examID] = append(f.evaluatorLinks[examID], evaluatorID)
	return nil
}

func (f *fakeExamStore) GetExams(ctx context.Context, offset uint64, limit int) ([]*models.Exam, int64, error) {
	var all []*models.Exam
	for _, e := range f.exams {
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if int(offset) >= len(all) {
		return []*models.Exam{}, total, nil
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeExamStore) UpdateExam(ctx context.Context, exam *models.Exam) error {
	if _, ok := f.exams[exam.ID]; !ok {
		return apperrors.ErrExamNotFound
	}
	cp := *exam
	f.exams[exam.ID] = &cp
	return nil
}

func (f *fakeExamStore) DeleteExam(ctx context.Context, id int64) error {
	if _, ok := f.exams[id]; !ok {
		return apperrors.ErrExamNotFound
	}
	if f.hasAssignments[id] {
		return apperrors.ErrExamHasAssignments
	}
	delete(f.exams, id)
	return nil
}

func (f *fakeExamStore) GetStationByID(ctx context.Context, id int64) (*models.Station, error) {
	station, ok := f.stations[id]
	if !ok {
		return nil, apperrors.ErrStationNotFound
	}
	cp := *station
	return &cp, nil
}

func (f *fakeExamStore) UpdateStation(ctx context.Context, station *models.Station) error {
	existing, ok := f.stations[station.ID]
	if !ok {
		return apperrors.ErrStationNotFound
	}
	cp := *station
	cp.MaxScore = existing.MaxScore
	f.stations[station.ID] = &cp
	return nil
}

func (f *fakeExamStore) DeleteStation(ctx context.Context, id int64) error {
	if _, ok := f.stations[id]; !ok {
		return apperrors.ErrStationNotFound
	}
	delete(f.stations, id)
	return nil
}

func (f *fakeExamStore) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	question, ok := f.questions[id]
	if !ok {
		return nil, apperrors.ErrQuestionNotFound
	}
	cp := *question
	return &cp, nil
}

func (f *fakeExamStore) GetOptionByID(ctx context.Context, id int64) (*models.Option, error) {
	option, ok := f.options[id]
	if !ok {
		return nil, apperrors.ErrOptionNotFound
	}
	cp := *option
	return &cp, nil
}

func (f *fakeExamStore) UpdateOption(ctx context.Context, option *models.Option) error {
	if _, ok := f.options[option.ID]; !ok {
		return apperrors.ErrOptionNotFound
	}
	cp := *option
	f.options[option.ID] = &cp
	return nil
}

func (f *fakeExamStore) DeleteOption(ctx context.Context, id int64) error {
	if _, ok := f.options[id]; !ok {
		return apperrors.ErrOptionNotFound
	}
	delete(f.options, id)
	return nil
}

func (f *fakeExamStore) MarkExpiredInactive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, e := range f.exams {
		if e.Status == models.ExamStatusActive && e.AppliedAt != nil && e.AppliedAt.Before(now) {
			e.Status = models.ExamStatusInactive
			count++
		}
	}
	return count, nil
}

func newExamServiceForTest(store *fakeExamStore) *ExamService {
	return NewExamService(store, cache.New(time.Minute))
}

// seedExamTree builds an exam with two stations. The first station has a
// choice question with two options and a text question; the second station
// has no questions at all.
func seedExamTree(t *testing.T, store *fakeExamStore) (examID, fullStationID, emptyStationID int64) {
	t.Helper()
	ctx := context.Background()
	appliedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	examID, err := store.InsertExam(ctx, &models.Exam{
		Title:       "ECOE Medicina",
		Description: "Annual clinical skills circuit",
		AppliedAt:   &appliedAt,
		Status:      models.ExamStatusActive,
	})
	require.NoError(t, err)

	fullStationID, err = store.InsertStation(ctx, &models.Station{
		ExamID: examID, Title: "Cardiology", DurationMinutes: 10, OrderIndex: 1, IsActive: true,
	})
	require.NoError(t, err)

	emptyStationID, err = store.InsertStation(ctx, &models.Station{
		ExamID: examID, Title: "Triage", DurationMinutes: 5, OrderIndex: 2, IsActive: true,
	})
	require.NoError(t, err)

	choiceID, err := store.InsertQuestion(ctx, &models.Question{
		StationID: fullStationID, Text: "Pick the murmur", Type: models.QuestionTypeSingleChoice,
		OrderIndex: 1, Points: 4,
	})
	require.NoError(t, err)

	_, err = store.InsertOption(ctx, &models.Option{QuestionID: choiceID, Text: "Systolic", IsCorrect: true, OrderIndex: 1})
	require.NoError(t, err)
	_, err = store.InsertOption(ctx, &models.Option{QuestionID: choiceID, Text: "Diastolic", OrderIndex: 2})
	require.NoError(t, err)

	_, err = store.InsertQuestion(ctx, &models.Question{
		StationID: fullStationID, Text: "Describe auscultation", Type: models.QuestionTypeText,
		OrderIndex: 2, Points: 6,
	})
	require.NoError(t, err)

	_, err = store.RecalcStationMaxScore(ctx, fullStationID)
	require.NoError(t, err)
	_, err = store.RecalcStationMaxScore(ctx, emptyStationID)
	require.NoError(t, err)

	require.NoError(t, store.LinkEvaluatorToExam(ctx, 77, examID))

	return examID, fullStationID, emptyStationID
}

func TestGetExamAssemblesFullTree(t *testing.T) {
	store := newFakeExamStore()
	examID, _, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	exam, err := svc.GetExam(context.Background(), examID, false)
	require.NoError(t, err)

	require.Len(t, exam.Stations, 2)
	assert.Equal(t, "Cardiology", exam.Stations[0].Title)
	require.Len(t, exam.Stations[0].Questions, 2)
	assert.Len(t, exam.Stations[0].Questions[0].Options, 2)
	assert.Empty(t, exam.Stations[0].Questions[1].Options)
	assert.Empty(t, exam.Stations[1].Questions)
	assert.Equal(t, 10.0, exam.Stations[0].MaxScore)
}

func TestRelationshipReads(t *testing.T) {
	store := newFakeExamStore()
	examID, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)
	ctx := context.Background()

	stations, err := svc.ListStations(ctx, examID)
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "Cardiology", stations[0].Title)

	questions, err := svc.ListQuestions(ctx, fullStationID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Len(t, questions[0].Options, 2)

	options, err := svc.ListOptions(ctx, questions[0].ID)
	require.NoError(t, err)
	assert.Len(t, options, 2)

	_, err = svc.ListStations(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrExamNotFound)
}

func TestGetExamNotFound(t *testing.T) {
	svc := newExamServiceForTest(newFakeExamStore())

	_, err := svc.GetExam(context.Background(), 42, false)
	assert.ErrorIs(t, err, apperrors.ErrExamNotFound)
}

func TestCreateQuestionRecomputesStationMaxScore(t *testing.T) {
	store := newFakeExamStore()
	_, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	_, err := svc.CreateQuestion(context.Background(), fullStationID, &dto.CreateQuestionRequest{
		Text: "Blood pressure reading", Type: string(models.QuestionTypeNumeric), Points: 5,
	})
	require.NoError(t, err)

	station, err := store.GetStationByID(context.Background(), fullStationID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, station.MaxScore)
}

func TestCreateQuestionRejectsChoiceWithoutOptions(t *testing.T) {
	store := newFakeExamStore()
	_, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	_, err := svc.CreateQuestion(context.Background(), fullStationID, &dto.CreateQuestionRequest{
		Text: "Pick one", Type: string(models.QuestionTypeMultipleChoice), Points: 2,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateQuestionRejectsOptionsOnTextQuestion(t *testing.T) {
	store := newFakeExamStore()
	_, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	_, err := svc.CreateQuestion(context.Background(), fullStationID, &dto.CreateQuestionRequest{
		Text: "Free text", Type: string(models.QuestionTypeText), Points: 2,
		Options: []dto.CreateOptionPayload{{Text: "A"}},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateQuestionRollsBackWhenOptionInsertFails(t *testing.T) {
	store := newFakeExamStore()
	_, fullStationID, _ := seedExamTree(t, store)
	store.failInsertOption = true
	svc := newExamServiceForTest(store)

	_, err := svc.CreateQuestion(context.Background(), fullStationID, &dto.CreateQuestionRequest{
		Text: "Pick the rhythm", Type: string(models.QuestionTypeSingleChoice), Points: 3,
		Options: []dto.CreateOptionPayload{{Text: "Sinus", IsCorrect: true}},
	})
	require.Error(t, err)

	// Neither the question nor a stale max score survives the rollback
	questions, qErr := store.GetQuestionsByStation(context.Background(), fullStationID)
	require.NoError(t, qErr)
	assert.Len(t, questions, 2)
	station, sErr := store.GetStationByID(context.Background(), fullStationID)
	require.NoError(t, sErr)
	assert.Equal(t, 10.0, station.MaxScore)
}

func TestDeleteQuestionRecomputesStationMaxScore(t *testing.T) {
	store := newFakeExamStore()
	_, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	questions, err := store.GetQuestionsByStation(context.Background(), fullStationID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteQuestion(context.Background(), questions[1].ID))

	station, err := store.GetStationByID(context.Background(), fullStationID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, station.MaxScore)
}

func TestUpdateQuestionRecomputesStationMaxScore(t *testing.T) {
	store := newFakeExamStore()
	_, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	questions, err := store.GetQuestionsByStation(context.Background(), fullStationID)
	require.NoError(t, err)

	_, err = svc.UpdateQuestion(context.Background(), questions[1].ID, &dto.CreateQuestionRequest{
		Text: "Describe auscultation", Type: string(models.QuestionTypeText), Points: 1, OrderIndex: 2,
	})
	require.NoError(t, err)

	station, err := store.GetStationByID(context.Background(), fullStationID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, station.MaxScore)
}

func TestDuplicateExamCopiesWholeTree(t *testing.T) {
	store := newFakeExamStore()
	sourceID, _, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	newID, err := svc.DuplicateExam(context.Background(), sourceID, "2026-09-15 09:00")
	require.NoError(t, err)
	require.NotEqual(t, sourceID, newID)

	copied, err := svc.GetExam(context.Background(), newID, true)
	require.NoError(t, err)

	assert.Equal(t, "ECOE Medicina (2026-09-15)", copied.Title)
	assert.Equal(t, "Annual clinical skills circuit", copied.Description)
	assert.Equal(t, models.ExamStatusActive, copied.Status)
	require.NotNil(t, copied.AppliedAt)
	assert.Equal(t, 2026, copied.AppliedAt.Year())

	require.Len(t, copied.Stations, 2)
	assert.Equal(t, 10.0, copied.Stations[0].MaxScore)
	assert.Equal(t, 0.0, copied.Stations[1].MaxScore)
	require.Len(t, copied.Stations[0].Questions, 2)
	assert.Len(t, copied.Stations[0].Questions[0].Options, 2)
	assert.Empty(t, copied.Stations[1].Questions)

	evaluators, err := store.GetEvaluatorIDsByExam(context.Background(), newID)
	require.NoError(t, err)
	assert.Equal(t, []int64{77}, evaluators)
}

func TestDuplicateExamRejectsBadDate(t *testing.T) {
	store := newFakeExamStore()
	sourceID, _, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	_, err := svc.DuplicateExam(context.Background(), sourceID, "15/09/2026")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDuplicateExamRollsBackOnFailure(t *testing.T) {
	store := newFakeExamStore()
	sourceID, _, _ := seedExamTree(t, store)
	store.failInsertOption = true
	svc := newExamServiceForTest(store)

	_, err := svc.DuplicateExam(context.Background(), sourceID, "2026-09-15 09:00")
	require.Error(t, err)

	// Only the source exam remains
	exams, total, listErr := store.GetExams(context.Background(), 0, 10)
	require.NoError(t, listErr)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, sourceID, exams[0].ID)
}

func TestSweepStatusesDeactivatesExpiredActiveExams(t *testing.T) {
	store := newFakeExamStore()
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	expiredID, err := store.InsertExam(ctx, &models.Exam{Title: "Past", Status: models.ExamStatusActive, AppliedAt: &past})
	require.NoError(t, err)
	upcomingID, err := store.InsertExam(ctx, &models.Exam{Title: "Upcoming", Status: models.ExamStatusActive, AppliedAt: &future})
	require.NoError(t, err)
	draftID, err := store.InsertExam(ctx, &models.Exam{Title: "Draft", Status: models.ExamStatusDraft, AppliedAt: &past})
	require.NoError(t, err)

	svc := newExamServiceForTest(store)
	count, err := svc.SweepStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	expired, _ := store.GetExamByID(ctx, expiredID)
	assert.Equal(t, models.ExamStatusInactive, expired.Status)
	upcoming, _ := store.GetExamByID(ctx, upcomingID)
	assert.Equal(t, models.ExamStatusActive, upcoming.Status)
	draft, _ := store.GetExamByID(ctx, draftID)
	assert.Equal(t, models.ExamStatusDraft, draft.Status)
}

func TestSweepStatusesInvalidatesCachedTrees(t *testing.T) {
	store := newFakeExamStore()
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	examID, err := store.InsertExam(ctx, &models.Exam{Title: "Past", Status: models.ExamStatusActive, AppliedAt: &past})
	require.NoError(t, err)

	svc := newExamServiceForTest(store)

	cached, err := svc.GetExam(ctx, examID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusActive, cached.Status)

	count, err := svc.SweepStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	refreshed, err := svc.GetExam(ctx, examID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusInactive, refreshed.Status)
}

func TestCreateExamDefaultsToDraft(t *testing.T) {
	store := newFakeExamStore()
	svc := newExamServiceForTest(store)

	exam, err := svc.CreateExam(context.Background(), &dto.CreateExamRequest{Title: "New circuit"})
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusDraft, exam.Status)
	assert.Nil(t, exam.AppliedAt)
}

func TestCreateExamRejectsUnknownStatus(t *testing.T) {
	svc := newExamServiceForTest(newFakeExamStore())

	_, err := svc.CreateExam(context.Background(), &dto.CreateExamRequest{Title: "Bad", Status: "ARCHIVED"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteExamWithAssignmentsRejected(t *testing.T) {
	store := newFakeExamStore()
	examID, _, _ := seedExamTree(t, store)
	store.hasAssignments[examID] = true
	svc := newExamServiceForTest(store)

	err := svc.DeleteExam(context.Background(), examID)
	assert.ErrorIs(t, err, apperrors.ErrExamHasAssignments)
}

func TestGetExamUsesCacheUntilInvalidated(t *testing.T) {
	store := newFakeExamStore()
	examID, fullStationID, _ := seedExamTree(t, store)
	svc := newExamServiceForTest(store)

	first, err := svc.GetExam(context.Background(), examID, false)
	require.NoError(t, err)
	require.Len(t, first.Stations[0].Questions, 2)

	// A write through the service invalidates the cached tree
	_, err = svc.CreateQuestion(context.Background(), fullStationID, &dto.CreateQuestionRequest{
		Text: "Extra", Type: string(models.QuestionTypeText), Points: 2,
	})
	require.NoError(t, err)

	second, err := svc.GetExam(context.Background(), examID, false)
	require.NoError(t, err)
	assert.Len(t, second.Stations[0].Questions, 3)
}
