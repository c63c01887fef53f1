package insights

// TranscriptFile is one transcript available for analysis
type TranscriptFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// QueuedResponse acknowledges a call accepted for background processing
type QueuedResponse struct {
	Message string `json:"message"`
	CallID  string `json:"call_id"`
}
