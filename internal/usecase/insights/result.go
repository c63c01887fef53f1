package insights

import (
	"encoding/json"

	"github.com/johnquangdev/call-insights/internal/domain/entities"
)

// Output is one analyzer's slot in the combined document. Output is the
// payload as a JSON string; Parsed is its decoded form when it decodes.
type Output struct {
	Output string      `json:"output"`
	Parsed interface{} `json:"parsed,omitempty"`
}

// Result maps analyzer name to its output
type Result map[string]Output

// NewResult returns a result holding "{}" for every analyzer
func NewResult() Result {
	r := make(Result, len(entities.AnalyzerNames))
	for _, name := range entities.AnalyzerNames {
		r[name] = Output{Output: "{}"}
	}
	return r
}

// Parse fills Parsed for every output that is valid JSON
func (r Result) Parse() Result {
	for name, out := range r {
		var v interface{}
		if err := json.Unmarshal([]byte(out.Output), &v); err == nil {
			out.Parsed = v
			r[name] = out
		}
	}
	return r
}

// JSON encodes the result for storage
func (r Result) JSON() ([]byte, error) {
	return marshal(r)
}
