package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

type fakeBackend struct {
	mu sync.Mutex

	students     map[int64]*model.Student
	studentErr   error
	studentCalls map[int64]int
	studentGate  map[int64]chan struct{}

	subjects    map[int64][]model.Subject
	subjectGate map[int64]chan struct{}

	entered chan int64

	bulk     []model.BulkSubmission
	bulkErr  error
	singles  []model.SingleSessionRequest
	writeErr error

	// Ключи идемпотентности всех попыток записи, включая неудачные
	bulkKeys   []string
	singleKeys []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		students:     make(map[int64]*model.Student),
		studentCalls: make(map[int64]int),
		studentGate:  make(map[int64]chan struct{}),
		subjects:     make(map[int64][]model.Subject),
		subjectGate:  make(map[int64]chan struct{}),
		entered:      make(chan int64, 16),
	}
}

func (f *fakeBackend) withSubscribedStudent(id int64, name string, remaining int) *fakeBackend {
	f.students[id] = &model.Student{
		ID:   id,
		Name: name,
		Subscription: model.Subscribed{Snapshot: model.SubscriptionSnapshot{
			ID:                7,
			PlanName:          "Стандарт",
			SessionsRemaining: remaining,
			SessionsUsed:      12 - remaining,
			TotalSessions:     12,
		}},
	}
	return f
}

func (f *fakeBackend) withUnsubscribedStudent(id int64, name string) *fakeBackend {
	f.students[id] = &model.Student{ID: id, Name: name, Subscription: model.Unsubscribed{}}
	return f
}

func (f *fakeBackend) GetStudent(ctx context.Context, studentID int64) (*model.Student, error) {
	f.mu.Lock()
	f.studentCalls[studentID]++
	gate := f.studentGate[studentID]
	f.mu.Unlock()

	if gate != nil {
		f.entered <- studentID
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.studentErr != nil {
		return nil, f.studentErr
	}
	student, ok := f.students[studentID]
	if !ok {
		return nil, errNotFound
	}
	copied := *student
	return &copied, nil
}

func (f *fakeBackend) GetTeacherSubjects(ctx context.Context, teacherID int64) ([]model.Subject, error) {
	f.mu.Lock()
	gate := f.subjectGate[teacherID]
	f.mu.Unlock()

	if gate != nil {
		f.entered <- teacherID
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Subject(nil), f.subjects[teacherID]...), nil
}

func (f *fakeBackend) CreateSession(ctx context.Context, idempotencyKey string, req model.SingleSessionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleKeys = append(f.singleKeys, idempotencyKey)
	if f.writeErr != nil {
		return f.writeErr
	}
	f.singles = append(f.singles, req)
	return nil
}

func (f *fakeBackend) BulkCreateSessions(ctx context.Context, idempotencyKey string, payload model.BulkSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkKeys = append(f.bulkKeys, idempotencyKey)
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulk = append(f.bulk, payload)
	return nil
}

func (f *fakeBackend) keys() (bulk, single []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bulkKeys...), append([]string(nil), f.singleKeys...)
}

func (f *fakeBackend) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bulk) + len(f.singles)
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errNotFound = fakeError("not found")

type fakeJournal struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.Submission
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{records: make(map[uuid.UUID]*model.Submission)}
}

func (j *fakeJournal) Create(ctx context.Context, s *model.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	s.ID = uuid.New()
	copied := *s
	j.records[s.ID] = &copied
	return nil
}

func (j *fakeJournal) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records[id].Status = model.SubmissionStatusSucceeded
	return nil
}

func (j *fakeJournal) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records[id].Status = model.SubmissionStatusFailed
	j.records[id].Error = reason
	return nil
}

func (j *fakeJournal) countByStatus(status model.SubmissionStatus) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, r := range j.records {
		if r.Status == status {
			n++
		}
	}
	return n
}
