package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/backend"
	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

func validSingleInput() SingleSessionInput {
	return SingleSessionInput{
		StudentID:   studentID,
		TeacherID:   teacherID,
		SubjectID:   1,
		Title:       "Разбор домашнего задания",
		SessionDate: "2026-10-02",
		StartTime:   "18:00",
		EndTime:     "19:30",
		MeetingLink: "https://meet.example.com/abc",
	}
}

func TestSingleSessionValidate(t *testing.T) {
	svc := NewSingleSessionService(newFakeBackend(), nil, msk, zap.NewNop())

	tests := []struct {
		name   string
		mutate func(in *SingleSessionInput)
		fields []string
	}{
		{
			name:   "missing student",
			mutate: func(in *SingleSessionInput) { in.StudentID = 0 },
			fields: []string{"student_id"},
		},
		{
			name:   "blank title",
			mutate: func(in *SingleSessionInput) { in.Title = "   " },
			fields: []string{"title"},
		},
		{
			name:   "bad date",
			mutate: func(in *SingleSessionInput) { in.SessionDate = "02.10.2026" },
			fields: []string{"session_date"},
		},
		{
			name:   "bad time",
			mutate: func(in *SingleSessionInput) { in.StartTime = "25:00" },
			fields: []string{"start_time"},
		},
		{
			name:   "bad link",
			mutate: func(in *SingleSessionInput) { in.MeetingLink = "not a link" },
			fields: []string{"meeting_link"},
		},
		{
			name: "several fields",
			mutate: func(in *SingleSessionInput) {
				in.TeacherID = 0
				in.SubjectID = -1
			},
			fields: []string{"teacher_id", "subject_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSingleInput()
			tt.mutate(&in)

			err := svc.Validate(in)

			var ie *InputError
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, tt.fields, ie.Fields)
		})
	}

	t.Run("optional fields may be empty", func(t *testing.T) {
		in := validSingleInput()
		in.MeetingLink = ""
		in.Notes = ""
		assert.NoError(t, svc.Validate(in))
	})
}

func TestSingleSessionEndMustFollowStart(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 5)
	svc := NewSingleSessionService(be, nil, msk, zap.NewNop())

	for _, end := range []string{"18:00", "17:59"} {
		in := validSingleInput()
		in.EndTime = end

		err := svc.Create(context.Background(), 100, in)

		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	}
	assert.Zero(t, be.writes())
	assert.Empty(t, be.studentCalls)
}

func TestSingleSessionQuotaExhausted(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 0)
	journal := newFakeJournal()
	svc := NewSingleSessionService(be, journal, msk, zap.NewNop())

	err := svc.Create(context.Background(), 100, validSingleInput())

	var qe *schedule.QuotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, &schedule.QuotaExceededError{Requested: 1, Remaining: 0}, qe)
	assert.Zero(t, be.writes())
	assert.Empty(t, journal.records)
}

func TestSingleSessionWithoutSubscription(t *testing.T) {
	be := newFakeBackend().withUnsubscribedStudent(studentID, "Борис")
	svc := NewSingleSessionService(be, nil, msk, zap.NewNop())

	err := svc.Create(context.Background(), 100, validSingleInput())

	assert.ErrorIs(t, err, schedule.ErrNoActiveSubscription)
	assert.Zero(t, be.writes())
}

func TestSingleSessionStudentLookupFails(t *testing.T) {
	be := newFakeBackend()
	svc := NewSingleSessionService(be, nil, msk, zap.NewNop())

	err := svc.Create(context.Background(), 100, validSingleInput())

	assert.ErrorIs(t, err, schedule.ErrQuotaUnavailable)
	assert.ErrorIs(t, err, errNotFound)
	assert.Zero(t, be.writes())
}

func TestSingleSessionCreatesInUTC(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 1)
	journal := newFakeJournal()
	svc := NewSingleSessionService(be, journal, msk, zap.NewNop())

	err := svc.Create(context.Background(), 100, validSingleInput())
	require.NoError(t, err)

	require.Len(t, be.singles, 1)
	req := be.singles[0]
	assert.Equal(t, "2026-10-02", req.SessionDate.String())
	assert.True(t, time.Date(2026, 10, 2, 15, 0, 0, 0, time.UTC).Equal(req.StartTime))
	assert.True(t, time.Date(2026, 10, 2, 16, 30, 0, 0, time.UTC).Equal(req.EndTime))
	assert.Equal(t, "https://meet.example.com/abc", req.MeetingLink)

	assert.Equal(t, 1, journal.countByStatus(model.SubmissionStatusSucceeded))
}

func TestSingleSessionBackendRejects(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 3)
	be.writeErr = &backend.RejectedError{Status: 422, Message: "teacher is busy"}
	journal := newFakeJournal()
	svc := NewSingleSessionService(be, journal, msk, zap.NewNop())

	err := svc.Create(context.Background(), 100, validSingleInput())

	assert.ErrorIs(t, err, backend.ErrRejected)
	assert.Equal(t, 1, journal.countByStatus(model.SubmissionStatusFailed))
}

func TestSingleSessionRetryReusesDialogKey(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 3)
	be.writeErr = errors.New("bad gateway")
	svc := NewSingleSessionService(be, newFakeJournal(), msk, zap.NewNop())

	in := validSingleInput()
	in.IdempotencyKey = "dialog-1"

	require.Error(t, svc.Create(context.Background(), 100, in))
	be.writeErr = nil
	require.NoError(t, svc.Create(context.Background(), 100, in))

	_, single := be.keys()
	assert.Equal(t, []string{"dialog-1", "dialog-1"}, single)
}

func TestSingleSessionWithoutKeyGetsOne(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 3)
	svc := NewSingleSessionService(be, nil, msk, zap.NewNop())

	require.NoError(t, svc.Create(context.Background(), 100, validSingleInput()))

	_, single := be.keys()
	require.Len(t, single, 1)
	assert.NotEmpty(t, single[0])
}

func TestSingleSessionDescriptionAndNotesSent(t *testing.T) {
	be := newFakeBackend().withSubscribedStudent(studentID, "Анна", 3)
	svc := NewSingleSessionService(be, nil, msk, zap.NewNop())

	in := validSingleInput()
	in.Description = "Квадратные уравнения"
	in.Notes = "Принести тетрадь"
	require.NoError(t, svc.Create(context.Background(), 100, in))

	require.Len(t, be.singles, 1)
	assert.Equal(t, "Квадратные уравнения", be.singles[0].Description)
	assert.Equal(t, "Принести тетрадь", be.singles[0].Notes)
}
