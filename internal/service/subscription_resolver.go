package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

type QuotaStatus string

const (
	QuotaIdle    QuotaStatus = "idle"    // Студент не выбран
	QuotaLoading QuotaStatus = "loading" // Запрос в пути
	QuotaLoaded  QuotaStatus = "loaded"  // Данные получены (подписка может отсутствовать)
	QuotaFailed  QuotaStatus = "failed"  // Запрос завершился ошибкой
)

// QuotaState что известно о подписке выбранного студента
type QuotaState struct {
	Status    QuotaStatus
	StudentID int64
	Student   *model.Student
	Err       error
}

// Subscription подписка из загруженной карточки, nil пока данных нет
func (s QuotaState) Subscription() model.Subscription {
	if s.Status != QuotaLoaded || s.Student == nil {
		return nil
	}
	return s.Student.Subscription
}

// SubscriptionResolver загружает подписку студента и кэширует её
// на время жизни одного мастера. Ответ на устаревший запрос отбрасывается.
type SubscriptionResolver struct {
	mu       sync.Mutex
	students StudentDirectory
	logger   *zap.Logger
	cache    map[int64]*model.Student
	seq      uint64
	state    QuotaState
}

func NewSubscriptionResolver(students StudentDirectory, logger *zap.Logger) *SubscriptionResolver {
	return &SubscriptionResolver{
		students: students,
		logger:   logger,
		cache:    make(map[int64]*model.Student),
		state:    QuotaState{Status: QuotaIdle},
	}
}

// State текущее состояние
func (r *SubscriptionResolver) State() QuotaState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Resolve делает studentID текущим и загружает его подписку.
// Если за время запроса выбрали другого студента, возвращается ErrSuperseded
// и состояние не меняется.
func (r *SubscriptionResolver) Resolve(ctx context.Context, studentID int64) (QuotaState, error) {
	r.mu.Lock()
	r.seq++
	seq := r.seq

	if studentID <= 0 {
		r.state = QuotaState{Status: QuotaIdle}
		state := r.state
		r.mu.Unlock()
		return state, nil
	}

	if cached, ok := r.cache[studentID]; ok {
		r.state = QuotaState{Status: QuotaLoaded, StudentID: studentID, Student: cached}
		state := r.state
		r.mu.Unlock()

		r.logger.Debug("Subscription served from cache", zap.Int64("student_id", studentID))
		return state, nil
	}

	r.state = QuotaState{Status: QuotaLoading, StudentID: studentID}
	r.mu.Unlock()

	student, err := r.students.GetStudent(ctx, studentID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq {
		r.logger.Debug("Dropping stale subscription response",
			zap.Int64("student_id", studentID),
			zap.Int64("current_student_id", r.state.StudentID))
		return r.state, ErrSuperseded
	}

	if err != nil {
		r.logger.Error("Failed to load subscription",
			zap.Int64("student_id", studentID),
			zap.Error(err))
		r.state = QuotaState{Status: QuotaFailed, StudentID: studentID, Err: err}
		return r.state, err
	}

	if student.Subscription == nil {
		student.Subscription = model.Unsubscribed{}
	}

	r.cache[studentID] = student
	r.state = QuotaState{Status: QuotaLoaded, StudentID: studentID, Student: student}

	r.logger.Info("Subscription loaded",
		zap.Int64("student_id", studentID),
		zap.Bool("subscribed", isSubscribed(student.Subscription)))

	return r.state, nil
}

func isSubscribed(sub model.Subscription) bool {
	_, ok := sub.(model.Subscribed)
	return ok
}
