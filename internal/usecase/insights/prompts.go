package insights

import (
	"fmt"
	"strings"
)

const (
	SummarySystemPrompt   = "You are an expert sales coach analyzing sales call transcripts."
	BenchmarkSystemPrompt = "You are a senior consultant providing direct, actionable feedback to a sales representative based on actual call performance."
)

// BenchmarkSections are the headings the coaching prompt asks for, in order
var BenchmarkSections = []string{
	"Conversational Balance",
	"Objection Handling",
	"Pitch Optimization",
	"Call-to-Action Execution",
}

// SummaryPrompt renders the summary request around the transcript text
func SummaryPrompt(transcriptText string) string {
	return fmt.Sprintf(`Analyze this sales call transcript and provide:
1. A concise summary of the key points (2-3 sentences)
2. An overall call rating out of 100
3. A list of 3-5 key strengths demonstrated in the call
4. A list of 3-5 specific areas for improvement

Here's the transcript:
%s

Format your response in this exact JSON structure:
{
    "summary": "your summary here",
    "rating": numeric_rating,
    "strengths": [
        "strength 1",
        "strength 2",
        "strength 3"
    ],
    "areas_for_improvement": [
        "improvement 1",
        "improvement 2",
        "improvement 3"
    ]
}`, transcriptText)
}

// CallMetrics are the numbers the benchmark prompt is built from.
// The transcript itself is not sent.
type CallMetrics struct {
	SalesRepPercentage int
	ProspectResponses  int
	SimilarityScore    float64
}

// BenchmarkPrompt renders the coaching request for the four sections
func BenchmarkPrompt(m CallMetrics) string {
	var b strings.Builder
	b.WriteString("You are an expert sales coach analyzing a sales call. Provide structured, case-specific feedback to the sales representative. Ensure your response is clear and actionable.\n\n")
	b.WriteString("Key Metrics:\n")
	fmt.Fprintf(&b, "- The sales rep spoke %d%% of the time.\n", m.SalesRepPercentage)
	fmt.Fprintf(&b, "- The prospect responded %d times.\n", m.ProspectResponses)
	fmt.Fprintf(&b, "- The call had a %s%% similarity with best practices.\n\n", formatScore(m.SimilarityScore))
	b.WriteString("Analyze and provide four distinct paragraphs, each covering:\n\n")

	instructions := []string{
		"Assess whether the sales rep dominated the conversation or encouraged the prospect to speak. Provide specific ways to improve engagement.",
		"Evaluate how objections were addressed. Did the rep acknowledge concerns effectively or rush to push a solution? Offer an alternative response to strengthen objection handling.",
		"Analyze whether the pitch was concise and relevant. Was it aligned with the prospect's needs? Suggest improvements for making the pitch clearer and more engaging.",
		"Review how the call ended. Was the next step clearly defined? Did the prospect commit to an action? Recommend a stronger closing approach to improve conversion.",
	}
	for i, section := range BenchmarkSections {
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", section, instructions[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatScore prints 42.5 as "42.5" and 40 as "40.0"
func formatScore(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// PostCallPrompt asks for next step, objection, turning point and outcome
func PostCallPrompt(transcriptText string) string {
	return fmt.Sprintf(`Analyze this sales call transcript and provide these 4 insights in JSON format:
1. Recommended Next Step: What's the immediate follow-up action with specific timing
2. Key Objection: The main resistance point from the prospect
3. Key Turning Point: The moment when engagement or interest peaked
4. Outcome: The final result of the call

Transcript:
%s

Return ONLY valid JSON in this exact format without any additional text or formatting:
{
    "nextStep": {
        "action": "...",
        "details": "...",
        "timing": "...",
        "additionalInfo": "..."
    },
    "keyObjection": {
        "issue": "...",
        "context": "..."
    },
    "keyTurningPoint": {
        "action": "...",
        "context": "..."
    },
    "outcome": {
        "status": "...",
        "type": "..."
    }
}`, transcriptText)
}
