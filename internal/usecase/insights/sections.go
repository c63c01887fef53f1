package insights

import "strings"

// ParseSections splits "**Title** body" blocks into title -> body. A body
// runs until the next "**" or the end of text. Every heading in
// BenchmarkSections is present in the result; missing ones read "No data".
func ParseSections(text string) map[string]string {
	sections := make(map[string]string)
	pos := 0
	for {
		open := strings.Index(text[pos:], "**")
		if open < 0 {
			break
		}
		titleStart := pos + open + 2
		closeIdx := strings.Index(text[titleStart:], "**")
		if closeIdx < 0 {
			break
		}
		title := text[titleStart : titleStart+closeIdx]

		bodyStart := titleStart + closeIdx + 2
		for bodyStart < len(text) && isSpace(text[bodyStart]) {
			bodyStart++
		}
		bodyEnd := len(text)
		if next := strings.Index(text[bodyStart:], "**"); next >= 0 {
			bodyEnd = bodyStart + next
		}

		sections[strings.TrimSpace(title)] = strings.TrimSpace(text[bodyStart:bodyEnd])
		pos = bodyEnd
	}

	for _, name := range BenchmarkSections {
		if _, ok := sections[name]; !ok {
			sections[name] = "No data"
		}
	}
	return sections
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
