package entities

// Analyzer names, also the keys of the combined insights document.
const (
	AnalyzerSummary   = "call_summary"
	AnalyzerBenchmark = "custom_rag_analysis"
	AnalyzerIntent    = "buyer_intent"
	AnalyzerProfanity = "profanity_check"
)

// AnalyzerNames lists the analyzers in aggregation order
var AnalyzerNames = []string{
	AnalyzerSummary,
	AnalyzerBenchmark,
	AnalyzerIntent,
	AnalyzerProfanity,
}

// CallSummary is the summary analyzer's JSON shape
type CallSummary struct {
	Summary             string      `json:"summary"`
	Rating              interface{} `json:"rating"`
	Strengths           []string    `json:"strengths"`
	AreasForImprovement []string    `json:"areas_for_improvement"`
}

// ProfanityReport is the profanity analyzer's output
type ProfanityReport struct {
	SeverityLevel       string   `json:"severity level"`
	Report              string   `json:"report"`
	FlaggedTranscript   []string `json:"flagged_transcript,omitempty"`
	DetectedProfanities []string `json:"detected_profanities,omitempty"`
}

// PostCallAnalysis is the structured outcome of a finished call
type PostCallAnalysis struct {
	NextStep struct {
		Action         string `json:"action"`
		Details        string `json:"details"`
		Timing         string `json:"timing"`
		AdditionalInfo string `json:"additionalInfo"`
	} `json:"nextStep"`
	KeyObjection struct {
		Issue   string `json:"issue"`
		Context string `json:"context"`
	} `json:"keyObjection"`
	KeyTurningPoint struct {
		Action  string `json:"action"`
		Context string `json:"context"`
	} `json:"keyTurningPoint"`
	Outcome struct {
		Status string `json:"status"`
		Type   string `json:"type"`
	} `json:"outcome"`
}
