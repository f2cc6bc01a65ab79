package harness

// TraceEvent is one applied event in the trace.
type TraceEvent struct {
	Index   int    `json:"index"`
	Seq     int64  `json:"seq"`
	Type    string `json:"type"`
	Changed bool   `json:"changed"`
	Digest  string `json:"digest"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held and the journal replayed
	// cleanly.
	Pass bool `json:"pass"`

	// Trace holds one entry per event, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the canonical snapshot of the final state.
	State map[string]any `json:"state"`

	// Messages are the names of the queued remote-view messages.
	Messages []string `json:"messages"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
		State:    map[string]any{},
		Messages: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
