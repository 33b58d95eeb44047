package state

import (
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_admin_bot/internal/service"
)

// Manager управляет состояниями чатов и открытыми мастерами планирования
type Manager struct {
	mu      sync.RWMutex
	states  map[int64]*UserData                // chatID -> UserData
	wizards map[int64]*service.BulkScheduler // chatID -> мастер
	clock   func() time.Time
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states:  make(map[int64]*UserData),
		wizards: make(map[int64]*service.BulkScheduler),
		clock:   time.Now,
	}
}

// GetState получает текущее состояние чата
func (sm *Manager) GetState(chatID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[chatID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState устанавливает состояние чата
func (sm *Manager) SetState(chatID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		// Если состояние None, удаляем запись
		delete(sm.states, chatID)
		return
	}

	sm.ensureLocked(chatID).State = state
}

func (sm *Manager) ensureLocked(chatID int64) *UserData {
	userData, exists := sm.states[chatID]
	if !exists {
		userData = &UserData{
			State: StateNone,
			Data:  make(map[string]any),
		}
		sm.states[chatID] = userData
	}
	userData.Touched = sm.clock()
	return userData
}

// GetData получает временные данные чата
func (sm *Manager) GetData(chatID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[chatID]; exists {
		value, ok := userData.Data[key]
		return value, ok
	}
	return nil, false
}

// GetInt64 получает число из временных данных
func (sm *Manager) GetInt64(chatID int64, key string) (int64, bool) {
	value, ok := sm.GetData(chatID, key)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// GetString получает строку из временных данных
func (sm *Manager) GetString(chatID int64, key string) (string, bool) {
	value, ok := sm.GetData(chatID, key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// SetData устанавливает временные данные чата
func (sm *Manager) SetData(chatID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.ensureLocked(chatID).Data[key] = value
}

// ClearState очищает состояние, данные и закрывает мастер чата
func (sm *Manager) ClearState(chatID int64) bool {
	sm.mu.Lock()
	wizard := sm.wizards[chatID]
	_, hadState := sm.states[chatID]
	delete(sm.states, chatID)
	delete(sm.wizards, chatID)
	sm.mu.Unlock()

	if wizard != nil {
		wizard.Cancel()
	}
	return hadState || wizard != nil
}

// OpenWizard делает мастер текущим для чата; предыдущий мастер закрывается
func (sm *Manager) OpenWizard(chatID int64, wizard *service.BulkScheduler) {
	sm.mu.Lock()
	previous := sm.wizards[chatID]
	sm.wizards[chatID] = wizard
	sm.mu.Unlock()

	if previous != nil && previous != wizard {
		previous.Cancel()
	}
}

// Wizard возвращает открытый мастер чата
func (sm *Manager) Wizard(chatID int64) (*service.BulkScheduler, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	wizard, ok := sm.wizards[chatID]
	return wizard, ok
}

// CloseWizard убирает мастер чата, не трогая текстовый диалог
func (sm *Manager) CloseWizard(chatID int64) {
	sm.mu.Lock()
	wizard := sm.wizards[chatID]
	delete(sm.wizards, chatID)
	sm.mu.Unlock()

	if wizard != nil {
		wizard.Cancel()
	}
}

// ReapIdle закрывает диалоги и мастера, к которым не обращались дольше ttl.
// Мастер в процессе отправки не трогается. Возвращает ID закрытых чатов.
func (sm *Manager) ReapIdle(ttl time.Duration) []int64 {
	now := sm.clock()

	sm.mu.Lock()
	lastSeen := make(map[int64]time.Time, len(sm.states)+len(sm.wizards))
	for chatID, userData := range sm.states {
		lastSeen[chatID] = userData.Touched
	}

	var wizards []*service.BulkScheduler
	for chatID, wizard := range sm.wizards {
		if wizard.Phase() == service.PhaseSubmitting {
			lastSeen[chatID] = now
			continue
		}
		if seen := wizard.LastActivity(); seen.After(lastSeen[chatID]) {
			lastSeen[chatID] = seen
		}
	}

	var reaped []int64
	for chatID, seen := range lastSeen {
		if now.Sub(seen) <= ttl {
			continue
		}
		if wizard := sm.wizards[chatID]; wizard != nil {
			wizards = append(wizards, wizard)
		}
		delete(sm.states, chatID)
		delete(sm.wizards, chatID)
		reaped = append(reaped, chatID)
	}
	sm.mu.Unlock()

	for _, wizard := range wizards {
		wizard.Cancel()
	}
	return reaped
}
