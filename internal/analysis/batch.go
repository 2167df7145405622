package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/llm"
	"github.com/seismohq/seismo/internal/usage"
)

// ProgressFunc is called after each item completes.
type ProgressFunc func(done, total int, itemID string)

// retryBudget is the number of extra attempts after the first failure
// when retries are enabled.
const retryBudget = 2

// Options controls how a batch is driven through the provider.
type Options struct {
	Parallelism   int
	RetryFailures bool
	Priority      string
	CallTimeout   time.Duration
	RetryBackoff  time.Duration
	OnProgress    ProgressFunc
}

// BatchMeta carries the provenance stamped onto every ledger entry.
type BatchMeta struct {
	OrganizationID string
	SurveyID       string
}

// Runner drives analysis requests through an Adapter with bounded
// parallelism, recording every attempt in the usage ledger.
type Runner struct {
	adapter Adapter
	ledger  usage.Ledger
}

// NewRunner creates a batch runner.
func NewRunner(adapter Adapter, ledger usage.Ledger) *Runner {
	return &Runner{adapter: adapter, ledger: ledger}
}

// Run processes all requests and returns the summary plus disjoint result
// and failure sets. One item's failure never aborts the batch; on
// cancellation in-flight calls finish, undispatched items are recorded as
// failures, and the summary reports what actually completed. Completion
// order is not guaranteed.
func (r *Runner) Run(ctx context.Context, meta BatchMeta, requests []forces.Request, opts Options) (*BatchSummary, []ScoredResult, []Failure) {
	total := len(requests)
	summary := &BatchSummary{TotalRequested: total}
	if total == 0 {
		return summary, nil, nil
	}

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > total {
		parallelism = total
	}

	backoff := opts.RetryBackoff
	if backoff == 0 {
		backoff = 2 * time.Second
	}

	start := time.Now()
	sem := make(chan struct{}, parallelism)

	var (
		mu        sync.Mutex
		results   []ScoredResult
		failures  []Failure
		processed int64
		wg        sync.WaitGroup
	)

	report := func(itemID string) {
		count := atomic.AddInt64(&processed, 1)
		if opts.OnProgress != nil {
			opts.OnProgress(int(count), total, itemID)
		}
	}

	undispatched := func(req forces.Request) {
		mu.Lock()
		failures = append(failures, Failure{
			ItemID:  req.ItemID,
			Kind:    llm.ErrUnknown,
			Message: "not dispatched: " + ctx.Err().Error(),
		})
		mu.Unlock()
		report(req.ItemID)
	}

	for _, req := range requests {
		select {
		case <-ctx.Done():
			undispatched(req)
			continue
		case sem <- struct{}{}:
		}

		// Cancellation and a free slot can both be ready, and select picks
		// between ready cases arbitrarily. Re-check before handing the item
		// to a worker so a cancelled batch never dispatches.
		if ctx.Err() != nil {
			<-sem
			undispatched(req)
			continue
		}

		wg.Add(1)
		go func(req forces.Request) {
			defer wg.Done()
			defer func() { <-sem }()

			result, failure := r.processItem(ctx, meta, req, opts, backoff, summary, &mu)

			mu.Lock()
			if failure != nil {
				failures = append(failures, *failure)
			} else {
				results = append(results, *result)
			}
			mu.Unlock()

			report(req.ItemID)
		}(req)
	}

	wg.Wait()

	summary.Succeeded = len(results)
	summary.Failed = len(failures)
	summary.WallClockMs = time.Since(start).Milliseconds()
	return summary, results, failures
}

// processItem runs one request through the adapter, retrying retryable
// errors up to the retry budget. Every attempt appends one ledger entry
// and adds its usage to the summary.
func (r *Runner) processItem(ctx context.Context, meta BatchMeta, req forces.Request, opts Options, backoff time.Duration, summary *BatchSummary, mu *sync.Mutex) (*ScoredResult, *Failure) {
	maxAttempts := 1
	if opts.RetryFailures {
		maxAttempts = 1 + retryBudget
	}

	// Batch cancellation stops new dispatch but lets in-flight calls
	// finish, so the call context is detached from the batch context and
	// bounded only by the per-call timeout.
	detached := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		callCtx := detached
		cancel := func() {}
		if opts.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(detached, opts.CallTimeout)
		}
		result, att, err := r.adapter.Score(callCtx, req)
		cancel()

		status := usage.StatusSuccess
		if err != nil {
			status = usage.StatusError
			if llm.KindOf(err) == llm.ErrTimeout {
				status = usage.StatusTimeout
			}
		}

		r.ledger.Record(detached, usage.Entry{
			Provider:       r.adapter.Name(),
			Model:          att.Model,
			TokensUsed:     att.Tokens(),
			CostCents:      att.CostCents,
			LatencyMs:      att.LatencyMs,
			Status:         status,
			OrganizationID: meta.OrganizationID,
			SurveyID:       meta.SurveyID,
			ItemID:         req.ItemID,
		})

		mu.Lock()
		summary.TotalCostCents += att.CostCents
		summary.TotalTokens += att.Tokens()
		mu.Unlock()

		if err == nil {
			return result, nil
		}
		lastErr = err

		// Non-retryable errors fail immediately without consuming the
		// retry budget.
		if !llm.Retryable(err) {
			break
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, &Failure{ItemID: req.ItemID, Kind: llm.KindOf(lastErr), Message: lastErr.Error()}
			case <-time.After(backoff):
			}
		}
	}

	return nil, &Failure{ItemID: req.ItemID, Kind: llm.KindOf(lastErr), Message: lastErr.Error()}
}
