package domain

import "time"

// Usage outcomes as stored in usage_events.outcome.
const (
	OutcomeSuccess          = "success"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeTimeout          = "timeout"
	OutcomeError            = "error"
)

// UsageEvent describes a generation request for the audit log. It never
// carries caption text.
type UsageEvent struct {
	Email      string
	RequestID  string
	Count      int
	Captions   int
	Outcome    string
	Provider   string
	ImageFound bool
	Latency    time.Duration
}

// Success reports whether the request produced captions.
func (e UsageEvent) Success() bool {
	return e.Outcome == OutcomeSuccess
}

// UsageSummary counts a user's successful generations in a window.
type UsageSummary struct {
	Generations int
	Captions    int
}
