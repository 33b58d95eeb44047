package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/backend"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

var msk = time.FixedZone("MSK", 3*60*60)

const (
	studentID = int64(42)
	teacherID = int64(9)
)

func newScheduler(t *testing.T, be *fakeBackend, journal Journal) *BulkScheduler {
	t.Helper()

	be.subjects[teacherID] = []model.Subject{{ID: 1, Name: "Математика"}, {ID: 2, Name: "Физика"}}

	return NewBulkScheduler(be, journal, BulkOptions{
		ChatID:          100,
		Location:        msk,
		Locale:          schedule.LocaleEN,
		DurationMinutes: 60,
	}, zap.NewNop())
}

// fillForm выбирает студента, учителя, предмет и август 2026 (начинается в субботу)
func fillForm(t *testing.T, b *BulkScheduler, slots map[time.Weekday]string) {
	t.Helper()
	ctx := context.Background()

	_, err := b.SelectStudent(ctx, studentID)
	require.NoError(t, err)
	_, err = b.SelectTeacher(ctx, teacherID)
	require.NoError(t, err)
	require.NoError(t, b.SelectSubject(1))
	require.NoError(t, b.SetMonth(schedule.Month{Year: 2026, Month: time.August}))

	for wd, raw := range slots {
		tod, err := model.ParseTimeOfDay(raw)
		require.NoError(t, err)
		require.NoError(t, b.ToggleWeekday(wd))
		require.NoError(t, b.SetWeekdayTime(wd, tod))
	}
}

func TestBulkPreviewRejectedWhenOverQuota(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	b := newScheduler(t, be, nil)

	fillForm(t, b, map[time.Weekday]string{
		time.Monday:    "10:00",
		time.Wednesday: "16:00",
	})

	draft, err := b.GeneratePreview()

	require.Error(t, err)
	assert.Nil(t, draft)
	assert.Contains(t, err.Error(), "9 requested, 8 remaining")

	var qe *schedule.QuotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 9, qe.Requested)
	assert.Equal(t, 8, qe.Remaining)

	assert.Equal(t, PhaseEditing, b.Phase())
	assert.Zero(t, be.writes())
}

func TestBulkPreviewConfirmSubmitsUTCPayload(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	journal := newFakeJournal()
	b := newScheduler(t, be, journal)

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})

	draft, err := b.GeneratePreview()
	require.NoError(t, err)
	require.Len(t, draft, 5)
	assert.Equal(t, PhasePreviewing, b.Phase())

	wantDates := []string{"2026-08-03", "2026-08-10", "2026-08-17", "2026-08-24", "2026-08-31"}
	for i, s := range draft {
		assert.Equal(t, wantDates[i], s.Date.String())
		assert.Equal(t, "10:00", s.Start.String())
		assert.Equal(t, "11:00", s.End.String())
		assert.Equal(t, "Анна", s.StudentName)
		assert.Equal(t, "Математика", s.SubjectName)
	}

	view := b.View()
	assert.Equal(t, 3, view.RemainingAfter)
	assert.Len(t, view.Draft, 5)

	result, err := b.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Count)
	assert.Equal(t, int64(7), result.SubscriptionID)
	assert.Equal(t, PhaseClosed, b.Phase())

	require.Len(t, be.bulk, 1)
	payload := be.bulk[0]
	assert.Equal(t, int64(7), payload.SubscriptionID)
	require.Len(t, payload.Sessions, 5)

	for i, entry := range payload.Sessions {
		assert.Equal(t, studentID, entry.StudentID)
		assert.Equal(t, teacherID, entry.TeacherID)
		assert.Equal(t, int64(1), entry.SubjectID)
		assert.Equal(t, "Monday session", entry.Title)
		assert.Equal(t, wantDates[i], entry.SessionDate.String())
		assert.Equal(t, time.UTC, entry.StartTime.Location())
		assert.Equal(t, 7, entry.StartTime.Hour())
		assert.Equal(t, 8, entry.EndTime.Hour())
	}
	assert.True(t, time.Date(2026, 8, 3, 7, 0, 0, 0, time.UTC).Equal(payload.Sessions[0].StartTime))

	assert.Equal(t, 1, journal.countByStatus(model.SubmissionStatusSucceeded))
}

func TestBulkNoActiveSubscriptionBlocksPreview(t *testing.T) {
	be := newFakeBackend().withUnsubscribedStudent(studentID, "Борис")
	b := newScheduler(t, be, nil)

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})

	_, err := b.GeneratePreview()

	assert.ErrorIs(t, err, schedule.ErrNoActiveSubscription)
	assert.Equal(t, PhaseEditing, b.Phase())
	assert.Zero(t, be.writes())
}

func TestBulkInputValidationOrder(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	b := newScheduler(t, be, nil)
	ctx := context.Background()

	_, err := b.GeneratePreview()
	assert.ErrorIs(t, err, ErrMissingStudent)

	_, err = b.SelectStudent(ctx, studentID)
	require.NoError(t, err)
	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, ErrMissingTeacher)

	_, err = b.SelectTeacher(ctx, teacherID)
	require.NoError(t, err)
	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, ErrMissingSubject)

	require.NoError(t, b.SelectSubject(2))
	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, ErrMissingMonth)

	require.NoError(t, b.SetMonth(schedule.Month{Year: 2026, Month: time.August}))
	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, ErrNoWeekdaySelected)

	assert.Zero(t, be.writes())
}

func TestBulkTeacherChangeClearsSubject(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	b := newScheduler(t, be, nil)
	be.subjects[10] = []model.Subject{{ID: 5, Name: "Химия"}}

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})
	require.NotNil(t, b.View().Form.Subject)

	state, err := b.SelectTeacher(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []model.Subject{{ID: 5, Name: "Химия"}}, state.Subjects)

	view := b.View()
	assert.Nil(t, view.Form.Subject)
	assert.Equal(t, int64(10), view.Form.TeacherID)

	assert.ErrorIs(t, b.SelectSubject(1), ErrUnknownSubject)
	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, ErrMissingSubject)

	require.NoError(t, b.SelectSubject(5))
}

func TestBulkSubjectClearedBeforeLookupCompletes(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	b := newScheduler(t, be, nil)
	be.subjects[10] = []model.Subject{{ID: 5, Name: "Химия"}}

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})

	gate := make(chan struct{})
	be.subjectGate[10] = gate

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = b.SelectTeacher(context.Background(), 10)
	}()

	<-be.entered
	view := b.View()
	assert.Nil(t, view.Form.Subject)
	assert.Equal(t, SubjectsLoading, view.Subjects.Status)

	close(gate)
	<-done
	assert.Equal(t, SubjectsLoaded, b.View().Subjects.Status)
}

func TestBulkStaleSubjectsResponseIgnored(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	b := newScheduler(t, be, nil)
	be.subjects[10] = []model.Subject{{ID: 5, Name: "Химия"}}

	gate := make(chan struct{})
	be.subjectGate[10] = gate

	errCh := make(chan error, 1)
	go func() {
		_, err := b.SelectTeacher(context.Background(), 10)
		errCh <- err
	}()
	<-be.entered

	state, err := b.SelectTeacher(context.Background(), teacherID)
	require.NoError(t, err)
	assert.Equal(t, teacherID, state.TeacherID)

	close(gate)
	assert.ErrorIs(t, <-errCh, ErrSuperseded)

	view := b.View()
	assert.Equal(t, teacherID, view.Subjects.TeacherID)
	assert.Len(t, view.Subjects.Subjects, 2)
}

func TestBulkStaleStudentResponseIgnored(t *testing.T) {
	be := newFakeBackend().
		withSubscribedStudent(1, "Медленный", 3).
		withSubscribedStudent(2, "Быстрый", 10)
	b := newScheduler(t, be, nil)

	gate := make(chan struct{})
	be.studentGate[1] = gate

	errCh := make(chan error, 1)
	go func() {
		_, err := b.SelectStudent(context.Background(), 1)
		errCh <- err
	}()
	<-be.entered

	state, err := b.SelectStudent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, QuotaLoaded, state.Status)

	close(gate)
	assert.ErrorIs(t, <-errCh, ErrSuperseded)

	view := b.View()
	assert.Equal(t, int64(2), view.Form.StudentID)
	assert.Equal(t, int64(2), view.Quota.StudentID)
	assert.Equal(t, "Быстрый", view.Quota.Student.Name)
}

func TestBulkStudentLookupCached(t *testing.T) {
	be := newFakeBackend().
		withSubscribedStudent(1, "Анна", 3).
		withSubscribedStudent(2, "Борис", 10)
	b := newScheduler(t, be, nil)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 1, 2, 1} {
		_, err := b.SelectStudent(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, be.studentCalls[1])
	assert.Equal(t, 1, be.studentCalls[2])
}

func TestBulkSkipsLookupWithoutStudent(t *testing.T) {
	be := newFakeBackend()
	b := newScheduler(t, be, nil)

	state, err := b.SelectStudent(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, QuotaIdle, state.Status)
	assert.Empty(t, be.studentCalls)
}

func TestBulkLookupFailureBlocksPreview(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	be.studentErr = backend.ErrUnauthorized
	b := newScheduler(t, be, nil)
	ctx := context.Background()

	state, err := b.SelectStudent(ctx, studentID)
	require.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.Equal(t, QuotaFailed, state.Status)

	_, err = b.SelectTeacher(ctx, teacherID)
	require.NoError(t, err)
	require.NoError(t, b.SelectSubject(1))
	require.NoError(t, b.SetMonth(schedule.Month{Year: 2026, Month: time.August}))
	require.NoError(t, b.ToggleWeekday(time.Monday))

	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, schedule.ErrQuotaUnavailable)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.Equal(t, PhaseEditing, b.Phase())

	// повторный выбор после сбоя снова идёт в сеть
	be.studentErr = nil
	state, err = b.SelectStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, QuotaLoaded, state.Status)

	_, err = b.GeneratePreview()
	assert.NoError(t, err)
}

func TestBulkBackToEditKeepsSelections(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 20)
	b := newScheduler(t, be, nil)

	fillForm(t, b, map[time.Weekday]string{
		time.Monday:    "10:00",
		time.Wednesday: "16:00",
	})

	first, err := b.GeneratePreview()
	require.NoError(t, err)

	require.NoError(t, b.BackToEdit())
	view := b.View()
	assert.Equal(t, PhaseEditing, view.Phase)
	assert.Empty(t, view.Draft)
	assert.Len(t, model.SelectedSlots(view.Form.Slots), 2)

	second, err := b.GeneratePreview()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBulkEditsBlockedWhilePreviewing(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	b := newScheduler(t, be, nil)

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})
	_, err := b.GeneratePreview()
	require.NoError(t, err)

	assert.ErrorIs(t, b.ToggleWeekday(time.Friday), ErrWrongPhase)
	_, err = b.SelectStudent(context.Background(), 1)
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = b.GeneratePreview()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestBulkSubmitFailureReturnsToPreview(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	be.bulkErr = &backend.RejectedError{Status: 409, Message: "quota exceeded"}
	journal := newFakeJournal()
	b := newScheduler(t, be, journal)

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})
	draft, err := b.GeneratePreview()
	require.NoError(t, err)

	_, err = b.Confirm(context.Background())
	require.ErrorIs(t, err, backend.ErrRejected)

	view := b.View()
	assert.Equal(t, PhasePreviewing, view.Phase)
	assert.Equal(t, draft, view.Draft)
	assert.Equal(t, 1, journal.countByStatus(model.SubmissionStatusFailed))

	be.bulkErr = nil
	result, err := b.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Count)
	assert.Equal(t, PhaseClosed, b.Phase())
	assert.Equal(t, 1, journal.countByStatus(model.SubmissionStatusSucceeded))
}

func TestBulkCancelFromAnyState(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)

	editing := newScheduler(t, be, nil)
	editing.Cancel()
	assert.Equal(t, PhaseClosed, editing.Phase())

	previewing := newScheduler(t, be, nil)
	fillForm(t, previewing, map[time.Weekday]string{time.Monday: "10:00"})
	_, err := previewing.GeneratePreview()
	require.NoError(t, err)

	previewing.Cancel()
	view := previewing.View()
	assert.Equal(t, PhaseClosed, view.Phase)
	assert.Empty(t, view.Draft)

	_, err = previewing.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.ErrorIs(t, previewing.BackToEdit(), ErrWrongPhase)
	assert.Zero(t, be.writes())
}

func TestBuildBulkSubmissionAcrossMidnight(t *testing.T) {
	draft := schedule.Expand(
		schedule.Month{Year: 2026, Month: time.August},
		[]model.WeekdaySlot{{Weekday: time.Monday, Start: model.TimeOfDay{Hour: 23, Minute: 30}, Selected: true}},
		60,
		schedule.LocaleRU,
	)
	form := BulkForm{StudentID: 1, TeacherID: 2, Subject: &model.Subject{ID: 3}}

	payload := BuildBulkSubmission(7, form, draft, msk)

	require.Len(t, payload.Sessions, 5)
	first := payload.Sessions[0]
	assert.Equal(t, "2026-08-03", first.SessionDate.String())
	assert.True(t, time.Date(2026, 8, 3, 20, 30, 0, 0, time.UTC).Equal(first.StartTime))
	assert.Equal(t, time.Hour, first.EndTime.Sub(first.StartTime))
}

func TestBulkConfirmRetryReusesDraftKey(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	be.bulkErr = errors.New("backend unexpected status: 502")
	b := newScheduler(t, be, nil)

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})
	_, err := b.GeneratePreview()
	require.NoError(t, err)

	_, err = b.Confirm(context.Background())
	require.Error(t, err)

	be.bulkErr = nil
	_, err = b.Confirm(context.Background())
	require.NoError(t, err)

	bulk, _ := be.keys()
	require.Len(t, bulk, 2)
	assert.NotEmpty(t, bulk[0])
	assert.Equal(t, bulk[0], bulk[1])
}

func TestBulkNewDraftGetsNewKey(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 8)
	be.bulkErr = errors.New("backend unexpected status: 502")
	b := newScheduler(t, be, nil)

	fillForm(t, b, map[time.Weekday]string{time.Monday: "10:00"})
	_, err := b.GeneratePreview()
	require.NoError(t, err)
	_, err = b.Confirm(context.Background())
	require.Error(t, err)

	require.NoError(t, b.BackToEdit())
	_, err = b.GeneratePreview()
	require.NoError(t, err)
	_, err = b.Confirm(context.Background())
	require.Error(t, err)

	bulk, _ := be.keys()
	require.Len(t, bulk, 2)
	assert.NotEqual(t, bulk[0], bulk[1])
}

func TestResolverIdleWhileLookupInFlight(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(5, "Анна", 8)
	be.studentGate[5] = make(chan struct{})
	r := NewSubscriptionResolver(be, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), 5)
		done <- err
	}()
	<-be.entered

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := r.Resolve(context.Background(), 0)
			assert.NoError(t, err)
			assert.Equal(t, QuotaIdle, state.Status)
		}()
	}
	wg.Wait()

	close(be.studentGate[5])
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, QuotaIdle, r.State().Status)
}

func TestCatalogIdleWhileLookupInFlight(t *testing.T) {
	be := newFakeBackend()
	be.subjects[teacherID] = []model.Subject{{ID: 1, Name: "Математика"}}
	be.subjectGate[teacherID] = make(chan struct{})
	c := NewSubjectCatalog(be, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := c.Load(context.Background(), teacherID)
		done <- err
	}()
	<-be.entered

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := c.Load(context.Background(), 0)
			assert.NoError(t, err)
			assert.Equal(t, SubjectsIdle, state.Status)
		}()
	}
	wg.Wait()

	close(be.subjectGate[teacherID])
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, SubjectsIdle, c.State().Status)
}
