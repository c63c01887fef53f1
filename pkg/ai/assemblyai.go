package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/call-insights/pkg/config"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

// AssemblyAIClient turns call recordings into diarized transcripts
type AssemblyAIClient struct {
	client   *aai.Client
	language string
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, language string
	if cfg != nil {
		apiKey = cfg.APIKey
		language = cfg.LanguageCode
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if language == "" {
		language = "en_us"
	}
	return &AssemblyAIClient{
		client:   aai.NewClient(apiKey),
		language: language,
	}
}

// Transcribe submits recordingURL with speaker labels enabled and blocks
// until AssemblyAI finishes.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, recordingURL string) (transcript.Transcript, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(c.language),
		SpeakerLabels: aai.Bool(true),
	}
	tr, err := c.client.Transcripts.TranscribeFromURL(ctx, recordingURL, params)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if tr.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if tr.Error != nil {
			msg = *tr.Error
		}
		return transcript.Transcript{}, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}
	return FromUtterances(tr.Utterances), nil
}

// FromUtterances converts diarized utterances into turns. AssemblyAI labels
// speakers A, B, ...; they become "Speaker 1", "Speaker 2", ...
func FromUtterances(utterances []aai.TranscriptUtterance) transcript.Transcript {
	turns := make([]transcript.Turn, 0, len(utterances))
	for _, u := range utterances {
		if u.Text == nil || strings.TrimSpace(*u.Text) == "" {
			continue
		}
		speaker := transcript.UnknownSpeaker
		if u.Speaker != nil {
			speaker = SpeakerName(*u.Speaker)
		}
		turns = append(turns, transcript.Turn{Speaker: speaker, Text: strings.TrimSpace(*u.Text)})
	}
	return transcript.Transcript{Turns: turns}
}

// SpeakerName maps a single-letter diarization label to "Speaker N".
func SpeakerName(label string) string {
	label = strings.TrimSpace(label)
	if len(label) == 1 {
		ch := strings.ToUpper(label)[0]
		if ch >= 'A' && ch <= 'Z' {
			return fmt.Sprintf("Speaker %d", int(ch-'A')+1)
		}
	}
	if label == "" {
		return transcript.UnknownSpeaker
	}
	return "Speaker " + label
}
