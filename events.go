package smtpx

// EventKind discriminates the events the engine emits.
type EventKind int

const (
	// EventAttempt is emitted after every probe attempt, including ones
	// that will be retried. Intended for debug-level reporting.
	EventAttempt EventKind = iota

	// EventResult is emitted exactly once per candidate, when it
	// finalizes. Order is completion order, not input order.
	EventResult

	// EventSummary is emitted once at the end of a completed run.
	EventSummary
)

func (k EventKind) String() string {
	switch k {
	case EventAttempt:
		return "attempt"
	case EventResult:
		return "result"
	case EventSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// AttemptRecord describes one probe attempt for a candidate. Records are
// event payloads for retry accounting and debug reporting; they are not
// retained after the candidate finalizes.
type AttemptRecord struct {
	Candidate Candidate
	Attempt   int
	Reply     *Reply
	Failure   Failure
	Verdict   Verdict
}

// Event is one item of the engine's output stream. Exactly one of
// Attempt, Result, and Report is set, matching Kind. The engine delivers
// events sequentially from a single goroutine; handlers need no locking
// but should return quickly to avoid backpressure on the workers.
type Event struct {
	Kind    EventKind
	RunID   string
	Attempt *AttemptRecord
	Result  *Result
	Report  *Report
}

// EventHandler consumes the engine's event stream. A nil handler is
// valid; the run then only produces the final Report.
type EventHandler func(Event)
