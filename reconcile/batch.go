package reconcile

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the live tracking snapshot for a container. A (nil,
// nil) return means the provider has no data for that container; an error
// return is a transport or provider failure for that item only.
type Fetcher interface {
	Lookup(ctx context.Context, containerNumber string) (*Snapshot, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, containerNumber string) (*Snapshot, error)

func (f FetcherFunc) Lookup(ctx context.Context, containerNumber string) (*Snapshot, error) {
	return f(ctx, containerNumber)
}

type lookupOutcome struct {
	snapshot *Snapshot
	err      error
}

// Reconcile runs a full batch: jobs without a container number are
// filtered out, lookups fan out with bounded concurrency, and each
// remaining job is classified against its snapshot. A failed lookup never
// aborts the batch; the job lands in the error list instead of the result
// list. Results and errors are ordered by JobRef so identical inputs
// produce identical output regardless of lookup completion order.
func Reconcile(ctx context.Context, jobs []Job, fetcher Fetcher, opts Options) ([]Result, []LookupError, Summary) {
	candidates := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job.ContainerNumber != "" {
			candidates = append(candidates, job)
		}
	}

	outcomes := make([]lookupOutcome, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.lookupWorkers())
	for i := range candidates {
		i := i
		group.Go(func() error {
			snapshot, err := fetcher.Lookup(groupCtx, candidates[i].ContainerNumber)
			outcomes[i] = lookupOutcome{snapshot: snapshot, err: err}
			return nil
		})
	}
	// Workers only record per-item outcomes, so Wait cannot fail.
	_ = group.Wait()

	results := make([]Result, 0, len(candidates))
	var errors []LookupError
	var summary Summary
	for i, job := range candidates {
		outcome := outcomes[i]
		if outcome.err != nil {
			errors = append(errors, LookupError{
				ShipmentId:      job.ShipmentId,
				JobRef:          job.JobRef,
				ContainerNumber: job.ContainerNumber,
				Err:             outcome.err,
				Message:         outcome.err.Error(),
			})
			summary.Failed++
			continue
		}

		result := Classify(job, outcome.snapshot, opts)
		results = append(results, result)
		switch result.Status {
		case StatusMatched:
			summary.Matched++
		case StatusDiscrepancy:
			summary.Discrepancies++
		case StatusNotTracked:
			summary.NotTracked++
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].JobRef < results[j].JobRef })
	sort.Slice(errors, func(i, j int) bool { return errors[i].JobRef < errors[j].JobRef })
	return results, errors, summary
}
