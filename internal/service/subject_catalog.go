package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

type SubjectsStatus string

const (
	SubjectsIdle    SubjectsStatus = "idle"
	SubjectsLoading SubjectsStatus = "loading"
	SubjectsLoaded  SubjectsStatus = "loaded"
	SubjectsFailed  SubjectsStatus = "failed"
)

// SubjectsState предметы текущего выбранного учителя
type SubjectsState struct {
	Status    SubjectsStatus
	TeacherID int64
	Subjects  []model.Subject
	Err       error
}

// Find ищет предмет среди загруженных
func (s SubjectsState) Find(subjectID int64) (model.Subject, bool) {
	if s.Status != SubjectsLoaded {
		return model.Subject{}, false
	}
	for _, subject := range s.Subjects {
		if subject.ID == subjectID {
			return subject, true
		}
	}
	return model.Subject{}, false
}

// SubjectCatalog загружает предметы учителя. Каждая смена учителя
// делает предыдущий запрос устаревшим.
type SubjectCatalog struct {
	mu       sync.Mutex
	subjects SubjectDirectory
	logger   *zap.Logger
	seq      uint64
	state    SubjectsState
}

func NewSubjectCatalog(subjects SubjectDirectory, logger *zap.Logger) *SubjectCatalog {
	return &SubjectCatalog{
		subjects: subjects,
		logger:   logger,
		state:    SubjectsState{Status: SubjectsIdle},
	}
}

// State текущее состояние
func (c *SubjectCatalog) State() SubjectsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load загружает предметы teacherID
func (c *SubjectCatalog) Load(ctx context.Context, teacherID int64) (SubjectsState, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq

	if teacherID <= 0 {
		c.state = SubjectsState{Status: SubjectsIdle}
		state := c.state
		c.mu.Unlock()
		return state, nil
	}

	c.state = SubjectsState{Status: SubjectsLoading, TeacherID: teacherID}
	c.mu.Unlock()

	subjects, err := c.subjects.GetTeacherSubjects(ctx, teacherID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("Dropping stale subjects response",
			zap.Int64("teacher_id", teacherID),
			zap.Int64("current_teacher_id", c.state.TeacherID))
		return c.state, ErrSuperseded
	}

	if err != nil {
		c.logger.Error("Failed to load teacher subjects",
			zap.Int64("teacher_id", teacherID),
			zap.Error(err))
		c.state = SubjectsState{Status: SubjectsFailed, TeacherID: teacherID, Err: err}
		return c.state, err
	}

	c.state = SubjectsState{Status: SubjectsLoaded, TeacherID: teacherID, Subjects: subjects}
	return c.state, nil
}
