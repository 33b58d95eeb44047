package repository

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_admin_bot/internal/model"
	"github.com/Freeeeeet/tutor_admin_bot/internal/repository/base"
)

// ErrSubmissionNotFound запись журнала не найдена
var ErrSubmissionNotFound = errors.New("submission not found")

// maxErrorLength ограничение на длину текста ошибки в журнале
const maxErrorLength = 1000

// SubmissionRepository журнал отправок занятий на бэкенд
type SubmissionRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewSubmissionRepository создаёт новый репозиторий
func NewSubmissionRepository(pool *pgxpool.Pool, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// Create записывает новую отправку в статусе pending
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = model.SubmissionStatusPending
	}

	query := `
		INSERT INTO schedule_submissions (id, kind, chat_id, student_id, subscription_id, session_count, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.ID,
		s.Kind,
		s.ChatID,
		s.StudentID,
		s.SubscriptionID,
		s.SessionCount,
		s.Status,
		s.Error,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	r.logger.Debug("Submission journaled",
		zap.String("submission_id", s.ID.String()),
		zap.String("kind", string(s.Kind)),
		zap.Int("sessions", s.SessionCount))

	return nil
}

// MarkSucceeded отмечает отправку как принятую бэкендом
func (r *SubmissionRepository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, model.SubmissionStatusSucceeded, "")
}

// MarkFailed отмечает отправку как неудачную
func (r *SubmissionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.setStatus(ctx, id, model.SubmissionStatusFailed, truncateReason(reason, maxErrorLength))
}

// truncateReason обрезает текст до limit байт, не разрывая UTF-8 символ
func truncateReason(reason string, limit int) string {
	if len(reason) <= limit {
		return reason
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

func (r *SubmissionRepository) setStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus, reason string) error {
	query := `
		UPDATE schedule_submissions
		SET status = $1, error = $2, updated_at = NOW()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, status, reason, id)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}

	if affected == 0 {
		return ErrSubmissionNotFound
	}

	return nil
}

// GetByID получает запись журнала по ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	query := `
		SELECT id, kind, chat_id, student_id, subscription_id, session_count, status, error, created_at, updated_at
		FROM schedule_submissions
		WHERE id = $1
	`

	s, err := scanSubmission(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission by id: %w", err)
	}

	return s, nil
}

// ListRecentByChat последние отправки из чата, новые первыми
func (r *SubmissionRepository) ListRecentByChat(ctx context.Context, chatID int64, limit int) ([]*model.Submission, error) {
	query := `
		SELECT id, kind, chat_id, student_id, subscription_id, session_count, status, error, created_at, updated_at
		FROM schedule_submissions
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return submissions, nil
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var s model.Submission
	err := row.Scan(
		&s.ID,
		&s.Kind,
		&s.ChatID,
		&s.StudentID,
		&s.SubscriptionID,
		&s.SessionCount,
		&s.Status,
		&s.Error,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
