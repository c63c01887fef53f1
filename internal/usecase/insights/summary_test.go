package insights

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

var sampleCall = transcript.Transcript{Turns: []transcript.Turn{
	{Speaker: "Speaker 1", Text: "Thanks for taking the call, can I walk you through pricing?"},
	{Speaker: "Speaker 2", Text: "Sure, we are evaluating a few vendors right now."},
	{Speaker: "Speaker 1", Text: "Great, our plan starts at forty dollars per seat."},
	{Speaker: "Speaker 2", Text: "That sounds reasonable, send me a proposal."},
}}

func TestSummaryAnalyzer_RoundTrip(t *testing.T) {
	want := entities.CallSummary{
		Summary:             "The rep walked the prospect through pricing and secured a proposal request.",
		Rating:              float64(82),
		Strengths:           []string{"clear pricing", "friendly tone", "quick follow-up"},
		AreasForImprovement: []string{"ask discovery questions", "confirm timeline", "name decision makers"},
	}
	reply, _ := json.Marshal(want)
	llm := &fakeCompleter{reply: string(reply)}

	a := NewSummaryAnalyzer(llm, 12000, nil)
	out := Run(context.Background(), a, sampleCall, nil)

	env, err := Envelope(a.Name(), out)
	if err != nil {
		t.Fatalf("Envelope() error = %v", err)
	}
	var got entities.CallSummary
	if err := json.Unmarshal([]byte(UnwrapOutput(a.Name(), string(env))), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}

	req := llm.last()
	if req.System != SummarySystemPrompt || !req.JSON {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Prompt, "Speaker 2: That sounds reasonable, send me a proposal.") {
		t.Errorf("prompt does not embed the transcript: %q", req.Prompt)
	}
}

func TestSummaryAnalyzer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		t     transcript.Transcript
		reply string
		want  map[string]interface{}
	}{
		{
			name: "empty transcript",
			t:    transcript.Transcript{},
			want: map[string]interface{}{"error": "No transcript data available"},
		},
		{
			name:  "no json in reply",
			t:     sampleCall,
			reply: "I cannot help with that.",
			want:  map[string]interface{}{"error": "Could not find valid JSON in the response"},
		},
		{
			name:  "broken json",
			t:     sampleCall,
			reply: `{"summary": "cut off`,
			want:  map[string]interface{}{"error": "Could not find valid JSON in the response"},
		},
		{
			name:  "unparseable span",
			t:     sampleCall,
			reply: `{"summary": }`,
			want:  map[string]interface{}{"error": "Failed to parse JSON response", "raw_response": `{"summary": }`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSummaryAnalyzer(&fakeCompleter{reply: tt.reply}, 0, nil)
			got := Run(context.Background(), a, tt.t, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Run() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSummaryAnalyzer_LLMFailureBecomesPlaceholder(t *testing.T) {
	a := NewSummaryAnalyzer(&fakeCompleter{err: errors.New("groq chat completion failed: 503")}, 0, nil)
	got, ok := Run(context.Background(), a, sampleCall, nil).(map[string]interface{})
	if !ok || got["error"] != "groq chat completion failed: 503" {
		t.Fatalf("Run() = %#v", got)
	}
}

type panicAnalyzer struct{}

func (panicAnalyzer) Name() string { return "boom" }

func (panicAnalyzer) Analyze(context.Context, transcript.Transcript) (interface{}, error) {
	panic("index out of range")
}

func TestRun_RecoversPanics(t *testing.T) {
	got, ok := Run(context.Background(), panicAnalyzer{}, sampleCall, nil).(map[string]interface{})
	if !ok || got["error"] != "index out of range" {
		t.Fatalf("Run() = %#v", got)
	}
}

func TestEnvelope_KeepsEmojiReadable(t *testing.T) {
	out, err := Envelope(entities.AnalyzerProfanity, entities.ProfanityReport{SeverityLevel: "Clean ✅", Report: "No profanity detected."})
	if err != nil {
		t.Fatalf("Envelope() error = %v", err)
	}
	var doc map[string]map[string]string
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	inner := doc[entities.AnalyzerProfanity]["output"]
	if inner != `{"severity level":"Clean ✅","report":"No profanity detected."}` {
		t.Fatalf("output = %q", inner)
	}
}
