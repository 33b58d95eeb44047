package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("rejected by backend")
)

// RejectedError бэкенд отклонил запрос (валидация, квота на стороне сервера)
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request: status %d", e.Status)
	}
	return fmt.Sprintf("backend rejected request: %s", e.Message)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Client HTTP-клиент REST API платформы
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, token string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// DefaultHTTPClient клиент с таймаутом по умолчанию
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

type subscriptionDTO struct {
	ID                int64  `json:"id"`
	PlanID            int64  `json:"plan_id"`
	SessionsRemaining int    `json:"sessions_remaining"`
	SessionsUsed      int    `json:"sessions_used"`
	TotalSessions     int    `json:"total_sessions"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
}

type studentDTO struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	ActiveSubscription *subscriptionDTO `json:"active_subscription"`
	PlanName           string           `json:"plan_name"`
	RemainingSessions  int              `json:"remaining_sessions"`
}

type teacherSubjectsDTO struct {
	Subjects []model.Subject `json:"subjects"`
}

type errorDTO struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// GetStudent получает карточку студента вместе с активной подпиской
func (c *Client) GetStudent(ctx context.Context, studentID int64) (*model.Student, error) {
	if studentID <= 0 {
		return nil, ErrInvalidInput
	}

	var body studentDTO
	if err := c.do(ctx, http.MethodGet, "/students/"+strconv.FormatInt(studentID, 10), "", nil, &body); err != nil {
		return nil, fmt.Errorf("get student %d: %w", studentID, err)
	}

	student := &model.Student{
		ID:           body.ID,
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Subscription: model.Unsubscribed{},
	}

	if sub := body.ActiveSubscription; sub != nil {
		student.Subscription = model.Subscribed{Snapshot: model.SubscriptionSnapshot{
			ID:                sub.ID,
			PlanID:            sub.PlanID,
			PlanName:          body.PlanName,
			SessionsRemaining: sub.SessionsRemaining,
			SessionsUsed:      sub.SessionsUsed,
			TotalSessions:     sub.TotalSessions,
			StartDate:         sub.StartDate,
			EndDate:           sub.EndDate,
		}}
	}

	return student, nil
}

// GetTeacherSubjects получает предметы учителя
func (c *Client) GetTeacherSubjects(ctx context.Context, teacherID int64) ([]model.Subject, error) {
	if teacherID <= 0 {
		return nil, ErrInvalidInput
	}

	var body teacherSubjectsDTO
	path := "/teachers/" + strconv.FormatInt(teacherID, 10) + "/subjects"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &body); err != nil {
		return nil, fmt.Errorf("get subjects of teacher %d: %w", teacherID, err)
	}

	if body.Subjects == nil {
		return []model.Subject{}, nil
	}
	return body.Subjects, nil
}

// CreateSession создаёт одно занятие.
// Повтор с тем же idempotencyKey бэкенд не исполняет второй раз.
func (c *Client) CreateSession(ctx context.Context, idempotencyKey string, req model.SingleSessionRequest) error {
	if err := c.do(ctx, http.MethodPost, "/sessions", idempotencyKey, req, nil); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// BulkCreateSessions создаёт пакет занятий одним запросом.
// idempotencyKey должен быть одинаковым для всех повторов одного черновика.
func (c *Client) BulkCreateSessions(ctx context.Context, idempotencyKey string, payload model.BulkSubmission) error {
	if payload.SubscriptionID <= 0 || len(payload.Sessions) == 0 {
		return ErrInvalidInput
	}

	if err := c.do(ctx, http.MethodPost, "/sessions/bulk", idempotencyKey, payload, nil); err != nil {
		return fmt.Errorf("bulk create %d sessions: %w", len(payload.Sessions), err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, in, out interface{}) error {
	if c.baseURL == "" {
		return ErrInvalidInput
	}

	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if idempotencyKey == "" {
			idempotencyKey = uuid.NewString()
		}
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// continue
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &RejectedError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	default:
		return fmt.Errorf("backend unexpected status: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body errorDTO
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
