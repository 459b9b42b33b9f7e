package extractor

// LineTrace describes what the classifier did with one line.
type LineTrace struct {
	Line   int      `json:"line"`
	Text   string   `json:"text"`
	Hits   []string `json:"hits,omitempty"`
	Inside bool     `json:"inside"`
	Edge   string   `json:"edge,omitempty"`
}

// Trace runs the same scan as ExtractLines and reports, per line, which
// recognizers contributed and the sequential-block state after the line.
func (e *Extractor) Trace(lines []string) ([]LineTrace, Summary) {
	summary := newSummary()
	var st seqState
	traces := make([]LineTrace, 0, len(lines))
	for i, line := range lines {
		hits := e.classify(&st, i+1, line, &summary)
		traces = append(traces, LineTrace{
			Line:   i + 1,
			Text:   line,
			Hits:   hits,
			Inside: st.inside,
			Edge:   st.edge,
		})
	}
	return traces, summary
}

// SplitLines splits source text into lines without altering them.
func SplitLines(s string) []string {
	return splitLines(s)
}
