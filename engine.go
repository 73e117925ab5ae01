package smtpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// prober is the per-attempt SMTP exchange, abstracted so the engine can
// be tested with injected fakes. Every call opens (and tears down) its
// own connection.
type prober interface {
	Probe(ctx context.Context, cand Candidate) (*Reply, *ProbeError)
}

// Engine runs one enumeration: it schedules candidates over a bounded
// worker pool, drives session, classifier, and retry policy for each,
// and aggregates exactly one Result per candidate. An Engine is
// single-use; create a new one per run.
type Engine struct {
	cfg    *RunConfig
	logger *slog.Logger
	prober prober
	runID  string

	ran       atomic.Bool
	firstDone atomic.Bool
	cancelRun context.CancelFunc
	fatalOnce sync.Once
	fatalErr  error
}

// NewEngine validates the configuration and builds an engine. A nil
// logger discards all log output.
func NewEngine(cfg *RunConfig, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("smtpx: nil run configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		prober: &sessionProber{cfg: cfg},
		runID:  ulid.Make().String(),
	}, nil
}

// RunID returns the run's correlation ID, also present on every event.
func (e *Engine) RunID() string { return e.runID }

// Run probes every candidate and returns the end-of-run report. Events
// are delivered to handler sequentially from this goroutine.
//
// On context cancellation no new attempts are dispatched; candidates
// already in flight finalize (as errors if undecided) and the partial
// report is returned alongside the context error. If the very first
// attempt of the run fails before the server banner is read, the run
// aborts with ErrTargetUnreachable and no report.
func (e *Engine) Run(ctx context.Context, candidates []Candidate, handler EventHandler) (*Report, error) {
	if !e.ran.CompareAndSwap(false, true) {
		return nil, ErrEngineUsed
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.cancelRun = cancel

	start := time.Now()
	e.logger.Info("starting enumeration",
		"run_id", e.runID,
		"target", e.cfg.Addr(),
		"method", e.cfg.Method.String(),
		"candidates", len(candidates),
		"workers", e.cfg.Workers)

	workers := e.cfg.Workers
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan Candidate)
	events := make(chan Event)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				// A candidate handed over in the same instant as a
				// cancellation must not start probing.
				if runCtx.Err() != nil {
					continue
				}
				res := e.probeCandidate(runCtx, cand, events)
				events <- Event{Kind: EventResult, RunID: e.runID, Result: &res}
			}
		}()
	}

	// Feed the queue; dispatching stops as soon as the run is canceled.
	go func() {
		defer close(jobs)
		for _, cand := range candidates {
			select {
			case jobs <- cand:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(events)
	}()

	// Aggregate. Workers hand events over the channel, so the handler
	// and the report only ever see one goroutine.
	report := &Report{
		RunID:  e.runID,
		Target: e.cfg.Target,
		Port:   e.cfg.Port,
		Method: e.cfg.Method.String(),
		Total:  len(candidates),
	}
	seenValid := make(map[string]struct{})

	for ev := range events {
		if ev.Kind == EventResult {
			res := ev.Result
			report.Results = append(report.Results, *res)
			switch res.Verdict {
			case VerdictValid:
				report.Valid++
				if _, ok := seenValid[res.Address]; !ok {
					seenValid[res.Address] = struct{}{}
					report.ValidUsers = append(report.ValidUsers, res.Address)
				}
			case VerdictInvalid:
				report.Invalid++
			default:
				report.Errors++
			}
		}
		if handler != nil {
			handler(ev)
		}
	}

	report.Elapsed = time.Since(start)

	if e.fatalErr != nil {
		e.logger.Error("enumeration aborted", "run_id", e.runID, "err", e.fatalErr)
		return nil, e.fatalErr
	}

	if handler != nil {
		handler(Event{Kind: EventSummary, RunID: e.runID, Report: report})
	}
	e.logger.Info("enumeration finished",
		"run_id", e.runID,
		"probed", len(report.Results),
		"valid", report.Valid,
		"invalid", report.Invalid,
		"errors", report.Errors,
		"elapsed", report.Elapsed)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// probeCandidate drives one candidate to its terminal verdict: probe,
// classify, and retry ambiguous or failed attempts on fresh connections
// until a trusted verdict lands or retries exhaust. Retries for a
// candidate are strictly sequential.
func (e *Engine) probeCandidate(ctx context.Context, cand Candidate, events chan<- Event) Result {
	maxAttempts := e.cfg.MaxRetries + 1

	var attempts int
	var lastReply *Reply
	var lastErr *ProbeError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 && !sleepCtx(ctx, e.cfg.RetryDelay) {
			break
		}
		attempts = attempt

		reply, perr := e.prober.Probe(ctx, cand)
		e.noteAttempt(perr)
		verdict := Classify(e.cfg.Method, reply, perr)
		lastReply, lastErr = reply, perr

		rec := AttemptRecord{
			Candidate: cand,
			Attempt:   attempt,
			Reply:     reply,
			Verdict:   verdict,
		}
		if perr != nil {
			rec.Failure = perr.Failure
			e.logger.Debug("attempt failed",
				"user", cand.Username,
				"attempt", attempt,
				"failure", perr.Failure.String(),
				"err", perr.Err)
		} else {
			e.logger.Debug("attempt reply",
				"user", cand.Username,
				"attempt", attempt,
				"code", reply.Code,
				"verdict", verdict.String())
		}
		events <- Event{Kind: EventAttempt, RunID: e.runID, Attempt: &rec}

		if verdict.Terminal() {
			return finalizeResult(cand, verdict, attempt, reply, perr)
		}
		if ctx.Err() != nil {
			break
		}
	}

	return finalizeResult(cand, VerdictError, attempts, lastReply, lastErr)
}

// noteAttempt implements the fatal-connectivity rule: if the first
// completed attempt of the run failed before a server banner was read,
// the target is considered unreachable and the whole run is aborted.
func (e *Engine) noteAttempt(perr *ProbeError) {
	if !e.firstDone.CompareAndSwap(false, true) {
		return
	}
	if perr != nil && !perr.Greeted {
		e.fatalOnce.Do(func() {
			e.fatalErr = fmt.Errorf("%w: %v", ErrTargetUnreachable, perr.Err)
			e.cancelRun()
		})
	}
}

func finalizeResult(cand Candidate, verdict Verdict, attempts int, reply *Reply, perr *ProbeError) Result {
	res := Result{
		Username: cand.Username,
		Address:  cand.Address,
		Verdict:  verdict,
		Attempts: attempts,
	}
	switch {
	case reply != nil:
		res.Code = reply.Code
		res.Message = reply.Message
	case perr != nil:
		res.Message = perr.Error()
	}
	return res
}

// sleepCtx pauses for d, returning false if the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
