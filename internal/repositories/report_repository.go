package repositories

import (
	"context"
	"time"

	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/mroshb/anonchat_bot/pkg/errors"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save report")
	}
	return nil
}

// ListSince returns reports filed at or after since, newest first.
func (r *ReportRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]models.Report, error) {
	var reports []models.Report
	result := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list reports")
	}
	return reports, nil
}

func (r *ReportRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count reports")
	}
	return count, nil
}

// ReportedCount is one row of the most-reported ranking.
type ReportedCount struct {
	ReportedID int64
	Count      int64
}

// TopReported ranks users by reports received since the given time.
func (r *ReportRepository) TopReported(ctx context.Context, since time.Time, limit int) ([]ReportedCount, error) {
	var rows []ReportedCount
	result := r.db.WithContext(ctx).Model(&models.Report{}).
		Select("reported_id, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("reported_id").
		Order("count DESC, reported_id ASC").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to rank reported users")
	}
	return rows, nil
}
