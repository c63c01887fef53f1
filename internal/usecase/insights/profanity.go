package insights

import (
	"context"
	"regexp"
	"strings"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
	"github.com/johnquangdev/call-insights/pkg/transcript"
)

type severity int

const (
	severityClean severity = iota
	severityMild
	severityModerate
	severitySevere
)

// profanityLevels are checked in order; the first level with a hit decides a turn.
// The masked severe entries contain '*' and so never equal a word token.
var profanityLevels = []struct {
	level severity
	words []string
}{
	{severityMild, []string{"damn", "hell", "crap", "stupid", "dumb", "idiot", "piss", "suck"}},
	{severityModerate, []string{"ass", "bastard", "bitch", "dick", "prick", "whore", "slut"}},
	{severitySevere, []string{"f***", "s***", "c***", "n*****", "motherf***er"}},
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ProfanityAnalyzer flags turns that use words from a fixed severity list
type ProfanityAnalyzer struct{}

func NewProfanityAnalyzer() *ProfanityAnalyzer { return &ProfanityAnalyzer{} }

func (ProfanityAnalyzer) Name() string { return entities.AnalyzerProfanity }

func (ProfanityAnalyzer) Analyze(_ context.Context, t transcript.Transcript) (interface{}, error) {
	return ScanProfanity(t), nil
}

// ScanProfanity annotates every turn, marking profane ones with " ❌", and
// rates the call by the worst level found.
func ScanProfanity(t transcript.Transcript) entities.ProfanityReport {
	var (
		flagged  = make([]string, 0, t.Len())
		detected []string
		seen     = make(map[string]bool)
		worst    = severityClean
	)

	for _, turn := range t.Turns {
		speaker := turn.Speaker
		if speaker == "" {
			speaker = transcript.UnknownSpeaker
		}
		level, words := detectProfanity(turn.Text)
		if level == severityClean {
			flagged = append(flagged, speaker+": "+turn.Text)
			continue
		}
		flagged = append(flagged, speaker+": "+turn.Text+" ❌")
		if level > worst {
			worst = level
		}
		for _, w := range words {
			if !seen[w] {
				seen[w] = true
				detected = append(detected, w)
			}
		}
	}

	report := entities.ProfanityReport{SeverityLevel: severityLabel(worst)}
	if len(detected) == 0 {
		report.Report = "No profanity detected."
		return report
	}
	report.Report = "Profanity detected."
	report.FlaggedTranscript = flagged
	report.DetectedProfanities = detected
	return report
}

func detectProfanity(text string) (severity, []string) {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	for _, lvl := range profanityLevels {
		var hits []string
		for _, w := range words {
			for _, bad := range lvl.words {
				if w == bad {
					hits = append(hits, w)
					break
				}
			}
		}
		if len(hits) > 0 {
			return lvl.level, hits
		}
	}
	return severityClean, nil
}

func severityLabel(s severity) string {
	switch s {
	case severitySevere:
		return "Severe ❌"
	case severityModerate:
		return "Moderate ❗"
	case severityMild:
		return "Mild ⚠️"
	default:
		return "Clean ✅"
	}
}
