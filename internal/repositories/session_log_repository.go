package repositories

import (
	"context"
	"time"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionLogRepository struct {
	db *gorm.DB
}

func NewSessionLogRepository(db *gorm.DB) *SessionLogRepository {
	return &SessionLogRepository{db: db}
}

// Record stores an ended session. Recording the same session twice is a no-op.
func (r *SessionLogRepository) Record(ctx context.Context, es matchmaking.EndedSession) error {
	entry := models.ChatSessionLog{
		ID:        es.ID,
		UserA:     int64(es.UserA),
		UserB:     int64(es.UserB),
		StartedAt: es.StartedAt,
		EndedAt:   es.EndedAt,
		EndReason: string(es.Reason),
		EndedBy:   int64(es.EndedBy),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to record session")
	}
	return nil
}

// CountSince returns sessions that ended at or after since.
func (r *SessionLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChatSessionLog{}).
		Where("ended_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count sessions")
	}
	return count, nil
}

// CountByReasonSince groups sessions ended at or after since by end reason.
func (r *SessionLogRepository) CountByReasonSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		EndReason string
		Count     int64
	}
	err := r.db.WithContext(ctx).Model(&models.ChatSessionLog{}).
		Select("end_reason, COUNT(*) AS count").
		Where("ended_at >= ?", since).
		Group("end_reason").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to group sessions")
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.EndReason] = row.Count
	}
	return out, nil
}
