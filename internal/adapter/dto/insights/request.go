package insights

import "encoding/json"

// AnalyzeRequest carries either an inline transcript or the id of a stored one.
// Transcript may be plain text or a transcript JSON document.
type AnalyzeRequest struct {
	Transcript   json.RawMessage `json:"transcript,omitempty"`
	TranscriptID string          `json:"transcript_id,omitempty" validate:"omitempty,max=255"`
}

// TranscribeRequest asks for a recording to be transcribed and analyzed
type TranscribeRequest struct {
	CallID       string `json:"call_id,omitempty" validate:"omitempty,max=255"`
	RecordingURL string `json:"recording_url" validate:"required,url"`
	SalesRepID   *int64 `json:"sales_rep_id,omitempty"`
}

// CallWebhookRequest is the body of a signed call ingestion webhook
type CallWebhookRequest struct {
	CallID         string          `json:"call_id" validate:"required,max=255"`
	OrganizationID *string         `json:"organization_id,omitempty" validate:"omitempty,uuid"`
	SalesRepID     *int64          `json:"sales_rep_id,omitempty"`
	Transcription  json.RawMessage `json:"transcription,omitempty"`
	RecordingURL   string          `json:"recording_url,omitempty" validate:"omitempty,url"`
}
