package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// CallLogRepository implements call log persistence using GORM
type CallLogRepository struct {
	db *gorm.DB
}

func NewCallLogRepository(db *gorm.DB) *CallLogRepository {
	return &CallLogRepository{db: db}
}

// FindByCallID looks up by call_id, then by numeric primary key
func (r *CallLogRepository) FindByCallID(ctx context.Context, callID string) (*entities.CallLog, error) {
	var log entities.CallLog
	err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&log).Error
	if err == nil {
		return &log, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find call log: %w", err)
	}

	id, convErr := strconv.ParseInt(callID, 10, 64)
	if convErr != nil {
		return nil, entities.ErrCallLogNotFound
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrCallLogNotFound
		}
		return nil, fmt.Errorf("failed to find call log: %w", err)
	}
	return &log, nil
}

// Upsert inserts the call or refreshes its recording fields on conflict.
// A re-send without an owner keeps the stored sales rep and organization.
func (r *CallLogRepository) Upsert(ctx context.Context, log *entities.CallLog) error {
	updates := clause.AssignmentColumns([]string{"call_date", "recording_url", "transcription", "updated_at"})
	for _, col := range []string{"sales_rep_id", "organization_id"} {
		updates = append(updates, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  gorm.Expr(fmt.Sprintf("COALESCE(EXCLUDED.%s, call_logs.%s)", col, col)),
		})
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "call_id"}},
		DoUpdates: updates,
	}).Create(log).Error
	if err != nil {
		return fmt.Errorf("failed to upsert call log: %w", err)
	}
	return nil
}

func (r *CallLogRepository) SaveInsights(ctx context.Context, id int64, insights datatypes.JSON, processedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.CallLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"insights":     insights,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save insights: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrCallLogNotFound
	}
	return nil
}

func (r *CallLogRepository) ListProcessed(ctx context.Context, orgID *uuid.UUID, limit int) ([]*entities.CallLog, error) {
	q := r.db.WithContext(ctx).Where("processed_at IS NOT NULL")
	if orgID != nil {
		q = q.Where("organization_id = ?", *orgID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []*entities.CallLog
	if err := q.Order("processed_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list processed calls: %w", err)
	}
	return logs, nil
}
