package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var speakerTextPattern = regexp.MustCompile(`"speaker"\s*:\s*"([^"]+)"\s*,\s*"text"\s*:\s*"([^"]+)"`)

// recordColumns are the call_logs columns that may hold a transcription, in lookup order.
var recordColumns = []string{"transcription", "transcript", "transcriptions"}

// LoadFile reads a transcript document from disk. Only I/O failures are
// returned; content that matches no known shape yields an empty transcript.
func LoadFile(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to read transcript file: %w", err)
	}
	return Parse(data), nil
}

// Parse decodes a transcript document. Supported shapes are
// {"transcript": [...]}, {"conversation": [...]} and a bare list of turns.
// When none of them yields a turn the raw text is scanned for
// "speaker"/"text" pairs.
func Parse(data []byte) Transcript {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err == nil {
		if t := FromValue(doc); !t.IsEmpty() {
			return t
		}
	}
	return scanPairs(string(data))
}

// FromText treats a non-JSON transcription as a single turn.
func FromText(raw string) Transcript {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Transcript{}
	}
	return Transcript{Turns: []Turn{{Speaker: PlainTextSpeaker, Text: raw}}}
}

// FromValue normalizes an already decoded JSON value.
func FromValue(v interface{}) Transcript {
	switch doc := v.(type) {
	case map[string]interface{}:
		if entries, ok := doc["transcript"]; ok {
			return Transcript{Turns: entriesToTurns(entries, false)}
		}
		if entries, ok := doc["conversation"]; ok {
			return Transcript{Turns: entriesToTurns(entries, false)}
		}
	case []interface{}:
		return Transcript{Turns: entriesToTurns(doc, true)}
	case string:
		return Parse([]byte(doc))
	}
	return Transcript{}
}

// FromRecord extracts a transcript from a call_logs row. Known transcription
// columns are tried first; a string column may hold JSON or plain text.
// Failing that, any string column whose JSON carries a transcript or
// conversation key is used.
func FromRecord(record map[string]interface{}) Transcript {
	for _, column := range recordColumns {
		value, ok := record[column]
		if !ok || value == nil {
			continue
		}
		if s, isString := value.(string); isString {
			if strings.TrimSpace(s) == "" {
				continue
			}
			return FromStored(s)
		}
		if t := FromValue(value); !t.IsEmpty() {
			return t
		}
	}

	for _, value := range record {
		s, ok := value.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
			continue
		}
		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			continue
		}
		_, hasTranscript := doc["transcript"]
		_, hasConversation := doc["conversation"]
		if hasTranscript || hasConversation {
			return FromValue(doc)
		}
	}
	return Transcript{}
}

// FromStored decodes a stored transcription: JSON documents go through
// Parse, anything that is not JSON becomes a single plain-text turn.
func FromStored(s string) Transcript {
	if json.Valid([]byte(s)) {
		return Parse([]byte(s))
	}
	return FromText(s)
}

// entriesToTurns converts a JSON list into turns. strict requires both
// fields, which is how bare lists are accepted.
func entriesToTurns(v interface{}, strict bool) []Turn {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	turns := make([]Turn, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		speaker, hasSpeaker := entry["speaker"].(string)
		text, hasText := entry["text"].(string)
		if strict && (!hasSpeaker || !hasText) {
			continue
		}
		if !hasSpeaker {
			speaker = UnknownSpeaker
		}
		turns = append(turns, Turn{Speaker: speaker, Text: text})
	}
	return turns
}

func scanPairs(raw string) Transcript {
	matches := speakerTextPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return Transcript{}
	}
	turns := make([]Turn, 0, len(matches))
	for _, m := range matches {
		turns = append(turns, Turn{Speaker: m[1], Text: m[2]})
	}
	return Transcript{Turns: turns}
}
