package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/schedule"
)

type Phase string

const (
	PhaseEditing    Phase = "editing"    // Форма редактируется, черновика нет
	PhasePreviewing Phase = "previewing" // Черновик сформирован и показан
	PhaseSubmitting Phase = "submitting" // Пакет отправлен, ждём ответа
	PhaseClosed     Phase = "closed"     // Успех или отмена
)

// BulkForm значения формы пакетного планирования
type BulkForm struct {
	StudentID int64
	TeacherID int64
	Subject   *model.Subject
	Month     schedule.Month
	Slots     []model.WeekdaySlot
}

func (f BulkForm) clone() BulkForm {
	out := f
	out.Slots = append([]model.WeekdaySlot(nil), f.Slots...)
	if f.Subject != nil {
		subject := *f.Subject
		out.Subject = &subject
	}
	return out
}

// BulkView неизменяемый снимок мастера для отрисовки
type BulkView struct {
	Phase    Phase
	Form     BulkForm
	Quota    QuotaState
	Subjects SubjectsState
	Draft    []model.GeneratedSession

	// Остаток подписки после бронирования черновика (только в previewing)
	RemainingAfter int

	DurationMinutes int
}

// BulkResult итог успешной отправки
type BulkResult struct {
	SubmissionID   string
	SubscriptionID int64
	Count          int
}

// BulkOptions параметры мастера
type BulkOptions struct {
	ChatID          int64
	Location        *time.Location
	Locale          schedule.Locale
	DurationMinutes int
}

// BulkScheduler мастер пакетного создания занятий:
// editing -> previewing -> submitting -> closed.
type BulkScheduler struct {
	mu       sync.Mutex
	phase    Phase
	form     BulkForm
	draft    []model.GeneratedSession
	lastSeen time.Time

	// Ключ идемпотентности черновика, живёт от GeneratePreview до BackToEdit
	submitKey string

	quota    *SubscriptionResolver
	subjects *SubjectCatalog
	writer   SessionWriter
	journal  Journal
	opts     BulkOptions
	clock    func() time.Time
	logger   *zap.Logger
}

func NewBulkScheduler(backend Backend, journal Journal, opts BulkOptions, logger *zap.Logger) *BulkScheduler {
	if journal == nil {
		journal = NopJournal{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DurationMinutes <= 0 {
		opts.DurationMinutes = model.DefaultSessionDuration
	}
	if opts.Locale == "" {
		opts.Locale = schedule.LocaleRU
	}

	logger = logger.With(zap.Int64("chat_id", opts.ChatID))

	return &BulkScheduler{
		phase:    PhaseEditing,
		form:     BulkForm{Slots: model.DefaultWeekdaySlots()},
		lastSeen: time.Now(),
		quota:    NewSubscriptionResolver(backend, logger),
		subjects: NewSubjectCatalog(backend, logger),
		writer:   backend,
		journal:  journal,
		opts:     opts,
		clock:    time.Now,
		logger:   logger,
	}
}

// LastActivity время последнего действия пользователя
func (b *BulkScheduler) LastActivity() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

// Phase текущее состояние
func (b *BulkScheduler) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// View снимок для отрисовки
func (b *BulkScheduler) View() BulkView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *BulkScheduler) viewLocked() BulkView {
	view := BulkView{
		Phase:    b.phase,
		Form:     b.form.clone(),
		Quota:    b.quota.State(),
		Subjects: b.subjects.State(),
		Draft:    append([]model.GeneratedSession(nil), b.draft...),

		DurationMinutes: b.opts.DurationMinutes,
	}
	if b.phase == PhasePreviewing || b.phase == PhaseSubmitting {
		if left, err := schedule.RemainingAfter(len(b.draft), view.Quota.Subscription()); err == nil {
			view.RemainingAfter = left
		}
	}
	return view
}

// beginEdit захватывает мьютекс, если мастер в состоянии editing
func (b *BulkScheduler) beginEdit() error {
	b.mu.Lock()
	if b.phase != PhaseEditing {
		phase := b.phase
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongPhase, phase)
	}
	b.lastSeen = b.clock()
	return nil
}

// SelectStudent выбирает студента и загружает его подписку
func (b *BulkScheduler) SelectStudent(ctx context.Context, studentID int64) (QuotaState, error) {
	if err := b.beginEdit(); err != nil {
		return QuotaState{}, err
	}
	b.form.StudentID = studentID
	b.mu.Unlock()

	b.logger.Info("Student selected", zap.Int64("student_id", studentID))

	return b.quota.Resolve(ctx, studentID)
}

// SelectTeacher выбирает учителя. Выбранный предмет сбрасывается до начала загрузки списка.
func (b *BulkScheduler) SelectTeacher(ctx context.Context, teacherID int64) (SubjectsState, error) {
	if err := b.beginEdit(); err != nil {
		return SubjectsState{}, err
	}
	b.form.TeacherID = teacherID
	b.form.Subject = nil
	b.mu.Unlock()

	b.logger.Info("Teacher selected", zap.Int64("teacher_id", teacherID))

	return b.subjects.Load(ctx, teacherID)
}

// SelectSubject выбирает предмет из загруженного списка текущего учителя
func (b *BulkScheduler) SelectSubject(subjectID int64) error {
	if err := b.beginEdit(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	state := b.subjects.State()
	if state.TeacherID != b.form.TeacherID {
		return ErrUnknownSubject
	}
	subject, ok := state.Find(subjectID)
	if !ok {
		return ErrUnknownSubject
	}

	b.form.Subject = &subject
	return nil
}

// SetMonth выбирает месяц
func (b *BulkScheduler) SetMonth(month schedule.Month) error {
	if err := b.beginEdit(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	if month.Month < time.January || month.Month > time.December || month.Year <= 0 {
		return ErrMissingMonth
	}
	b.form.Month = month
	return nil
}

// ToggleWeekday переключает выбор дня недели
func (b *BulkScheduler) ToggleWeekday(wd time.Weekday) error {
	if err := b.beginEdit(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	for i := range b.form.Slots {
		if b.form.Slots[i].Weekday == wd {
			b.form.Slots[i].Selected = !b.form.Slots[i].Selected
			return nil
		}
	}
	return ErrInvalidWeekdayTime
}

// SetWeekdayTime задаёт время начала для дня недели
func (b *BulkScheduler) SetWeekdayTime(wd time.Weekday, start model.TimeOfDay) error {
	if !start.Valid() {
		return ErrInvalidWeekdayTime
	}
	if err := b.beginEdit(); err != nil {
		return err
	}
	defer b.mu.Unlock()

	for i := range b.form.Slots {
		if b.form.Slots[i].Weekday == wd {
			b.form.Slots[i].Start = start
			return nil
		}
	}
	return ErrInvalidWeekdayTime
}

func (b *BulkScheduler) validateFormLocked() error {
	switch {
	case b.form.StudentID <= 0:
		return ErrMissingStudent
	case b.form.TeacherID <= 0:
		return ErrMissingTeacher
	case b.form.Subject == nil:
		return ErrMissingSubject
	case b.form.Month.IsZero():
		return ErrMissingMonth
	case len(model.SelectedSlots(b.form.Slots)) == 0:
		return ErrNoWeekdaySelected
	}
	return nil
}

// currentSubscriptionLocked подписка выбранного студента или причина, по которой её нет
func (b *BulkScheduler) currentSubscriptionLocked() (*model.Student, error) {
	state := b.quota.State()
	if state.StudentID != b.form.StudentID {
		return nil, ErrQuotaLoading
	}

	switch state.Status {
	case QuotaLoaded:
		return state.Student, nil
	case QuotaFailed:
		return nil, fmt.Errorf("%w: %w", schedule.ErrQuotaUnavailable, state.Err)
	default:
		return nil, ErrQuotaLoading
	}
}

// GeneratePreview раскладывает выбранные дни на даты месяца и переводит мастер в previewing.
// Пустой результат не ошибка: мастер остаётся в editing.
func (b *BulkScheduler) GeneratePreview() ([]model.GeneratedSession, error) {
	if err := b.beginEdit(); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	if err := b.validateFormLocked(); err != nil {
		return nil, err
	}

	student, err := b.currentSubscriptionLocked()
	if err != nil {
		return nil, err
	}

	count := schedule.CountMatches(b.form.Month, b.form.Slots)
	if err := schedule.ValidateQuota(count, student.Subscription); err != nil {
		b.logger.Info("Preview rejected by quota",
			zap.Int64("student_id", b.form.StudentID),
			zap.Int("requested", count),
			zap.Error(err))
		return nil, err
	}

	sessions := schedule.Expand(b.form.Month, b.form.Slots, b.opts.DurationMinutes, b.opts.Locale)
	if len(sessions) == 0 {
		return sessions, nil
	}

	teacherName := fmt.Sprintf("#%d", b.form.TeacherID)
	for i := range sessions {
		sessions[i].StudentName = student.Name
		sessions[i].TeacherName = teacherName
		sessions[i].SubjectName = b.form.Subject.Name
	}

	b.draft = sessions
	b.submitKey = uuid.NewString()
	b.phase = PhasePreviewing

	b.logger.Info("Preview generated",
		zap.Int64("student_id", b.form.StudentID),
		zap.String("month", b.form.Month.String()),
		zap.Int("sessions", len(sessions)))

	return append([]model.GeneratedSession(nil), sessions...), nil
}

// BackToEdit отбрасывает черновик; значения формы сохраняются
func (b *BulkScheduler) BackToEdit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != PhasePreviewing {
		return fmt.Errorf("%w: %s", ErrWrongPhase, b.phase)
	}

	b.lastSeen = b.clock()
	b.draft = nil
	b.submitKey = ""
	b.phase = PhaseEditing
	return nil
}

// Confirm переводит черновик в UTC и отправляет одним пакетом.
// При ошибке бэкенда мастер возвращается в previewing с сохранённым черновиком.
func (b *BulkScheduler) Confirm(ctx context.Context) (*BulkResult, error) {
	b.mu.Lock()
	if b.phase != PhasePreviewing {
		phase := b.phase
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrWrongPhase, phase)
	}
	b.lastSeen = b.clock()

	student, err := b.currentSubscriptionLocked()
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}

	if _, err := schedule.RemainingAfter(len(b.draft), student.Subscription); err != nil {
		b.mu.Unlock()
		return nil, err
	}

	// RemainingAfter гарантирует, что подписка активна
	sub := student.Subscription.(model.Subscribed)
	payload := BuildBulkSubmission(sub.Snapshot.ID, b.form, b.draft, b.opts.Location)
	studentID := b.form.StudentID
	key := b.submitKey
	b.phase = PhaseSubmitting
	b.mu.Unlock()

	subscriptionID := sub.Snapshot.ID
	record := &model.Submission{
		Kind:           model.SubmissionKindBulk,
		ChatID:         b.opts.ChatID,
		StudentID:      studentID,
		SubscriptionID: &subscriptionID,
		SessionCount:   len(payload.Sessions),
		Status:         model.SubmissionStatusPending,
	}
	if err := b.journal.Create(ctx, record); err != nil {
		b.logger.Warn("Failed to journal submission", zap.Error(err))
	}

	b.logger.Info("Submitting bulk sessions",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int("sessions", len(payload.Sessions)),
		zap.String("idempotency_key", key))

	submitErr := b.writer.BulkCreateSessions(ctx, key, payload)

	b.mu.Lock()
	defer b.mu.Unlock()

	if submitErr != nil {
		b.logger.Error("Bulk submission failed",
			zap.Int64("subscription_id", subscriptionID),
			zap.Error(submitErr))
		if err := b.journal.MarkFailed(ctx, record.ID, submitErr.Error()); err != nil {
			b.logger.Warn("Failed to journal submission failure", zap.Error(err))
		}
		if b.phase == PhaseSubmitting {
			b.phase = PhasePreviewing
		}
		return nil, submitErr
	}

	if err := b.journal.MarkSucceeded(ctx, record.ID); err != nil {
		b.logger.Warn("Failed to journal submission success", zap.Error(err))
	}

	b.phase = PhaseClosed
	b.draft = nil
	b.submitKey = ""

	b.logger.Info("Bulk sessions created",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int("sessions", len(payload.Sessions)))

	return &BulkResult{
		SubmissionID:   record.ID.String(),
		SubscriptionID: subscriptionID,
		Count:          len(payload.Sessions),
	}, nil
}

// Cancel закрывает мастер из любого состояния и отбрасывает черновик
func (b *BulkScheduler) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != PhaseClosed {
		b.logger.Info("Bulk scheduler canceled", zap.String("phase", string(b.phase)))
	}
	b.phase = PhaseClosed
	b.draft = nil
	b.submitKey = ""
	b.form = BulkForm{}
}

// BuildBulkSubmission собирает пакет из черновика. Перевод в UTC происходит только здесь.
func BuildBulkSubmission(subscriptionID int64, form BulkForm, draft []model.GeneratedSession, loc *time.Location) model.BulkSubmission {
	var subjectID int64
	if form.Subject != nil {
		subjectID = form.Subject.ID
	}

	entries := make([]model.SessionEntry, 0, len(draft))
	for _, s := range draft {
		start, end := schedule.SessionInstants(s.Date, s.Start, s.End, loc)
		entries = append(entries, model.SessionEntry{
			StudentID:   form.StudentID,
			TeacherID:   form.TeacherID,
			SubjectID:   subjectID,
			Title:       s.Title,
			SessionDate: s.Date,
			StartTime:   start,
			EndTime:     end,
		})
	}

	return model.BulkSubmission{
		SubscriptionID: subscriptionID,
		Sessions:       entries,
	}
}
