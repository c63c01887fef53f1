package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CallLog is one recorded sales call and, once processed, its insights
type CallLog struct {
	ID             int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	CallID         string         `json:"call_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	SalesRepID     *int64         `json:"sales_rep_id,omitempty" gorm:"index"`
	OrganizationID *uuid.UUID     `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	CallDate       *time.Time     `json:"call_date,omitempty" gorm:"type:timestamptz"`
	RecordingURL   *string        `json:"recording_url,omitempty" gorm:"type:text"`
	Transcription  *string        `json:"transcription,omitempty" gorm:"type:text"`
	Insights       datatypes.JSON `json:"insights,omitempty" gorm:"type:jsonb"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty" gorm:"type:timestamptz"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasInsights reports whether a non-empty insights document is stored
func (c *CallLog) HasInsights() bool {
	if len(c.Insights) == 0 {
		return false
	}
	s := string(c.Insights)
	return s != "null" && s != "{}"
}

// HasTranscription reports whether there is text to analyze
func (c *CallLog) HasTranscription() bool {
	return c.Transcription != nil && *c.Transcription != ""
}

// BelongsTo reports whether the call is visible to orgID. Calls without an
// organization are visible to everyone.
func (c *CallLog) BelongsTo(orgID *uuid.UUID) bool {
	if c.OrganizationID == nil {
		return true
	}
	return orgID != nil && *orgID == *c.OrganizationID
}
