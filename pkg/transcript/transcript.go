// Package transcript loads speaker-labelled call transcripts and renders
// them for prompts.
package transcript

import (
	"strings"
	"unicode/utf8"
)

const (
	// UnknownSpeaker labels turns that arrive without a speaker field.
	UnknownSpeaker = "Unknown Speaker"
	// PlainTextSpeaker labels a transcription that was stored as raw text.
	PlainTextSpeaker = "Unknown"
)

// Turn is one speaker's utterance.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Transcript is an ordered sequence of turns. Its JSON form is the
// {"transcript": [...]} shape so it can be written back for child processes.
type Transcript struct {
	Turns []Turn `json:"transcript"`
}

func (t Transcript) Len() int { return len(t.Turns) }

func (t Transcript) IsEmpty() bool { return len(t.Turns) == 0 }

// Text renders "speaker: text" lines, newline terminated.
func (t Transcript) Text() string {
	var b strings.Builder
	for _, turn := range t.Turns {
		b.WriteString(turn.Speaker)
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Bracketed renders "[speaker]: text" lines joined by newlines.
func (t Transcript) Bracketed() string {
	lines := make([]string, 0, len(t.Turns))
	for _, turn := range t.Turns {
		lines = append(lines, "["+turn.Speaker+"]: "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// TextBySpeaker returns the texts of all turns whose speaker equals label.
func (t Transcript) TextBySpeaker(label string) []string {
	var out []string
	for _, turn := range t.Turns {
		if turn.Speaker == label {
			out = append(out, turn.Text)
		}
	}
	return out
}

// Truncate cuts s to at most max bytes without splitting a rune.
// A max of zero or less disables the cap.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
