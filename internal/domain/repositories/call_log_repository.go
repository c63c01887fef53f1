package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"gorm.io/datatypes"
)

// CallLogRepository defines persistence operations for call logs
type CallLogRepository interface {
	// FindByCallID looks up by call_id, then by numeric id
	FindByCallID(ctx context.Context, callID string) (*entities.CallLog, error)

	// Upsert inserts or updates the row keyed by call_id
	Upsert(ctx context.Context, log *entities.CallLog) error

	// SaveInsights stores the combined insights document and processed_at
	SaveInsights(ctx context.Context, id int64, insights datatypes.JSON, processedAt time.Time) error

	// ListProcessed returns processed calls of an organization, newest first.
	// A nil orgID lists every processed call.
	ListProcessed(ctx context.Context, orgID *uuid.UUID, limit int) ([]*entities.CallLog, error)
}
