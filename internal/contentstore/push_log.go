package contentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marminbh/indexpush-svc/internal/models"
)

// PushLog stores one row per push to the indexing API
type PushLog struct {
	db *gorm.DB
}

func NewPushLog(db *gorm.DB) *PushLog {
	return &PushLog{db: db}
}

// RecordPush inserts a push attempt
func (p *PushLog) RecordPush(ctx context.Context, attempt *models.PushAttemptLog) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if err := p.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create push attempt log: %w", err)
	}
	return nil
}

// RecentFailures returns failed pushes started after since, newest first
func (p *PushLog) RecentFailures(ctx context.Context, since time.Time, limit int) ([]models.PushAttemptLog, error) {
	var attempts []models.PushAttemptLog
	err := p.db.WithContext(ctx).
		Where("succeeded = ? AND started_at >= ?", false, since).
		Order("started_at DESC").
		Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query push attempt log: %w", err)
	}
	return attempts, nil
}
