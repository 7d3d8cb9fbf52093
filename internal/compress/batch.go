package compress

import (
	"context"
	"log/slog"
	"sync"
)

// Failure records one image the batch could not compress.
type Failure struct {
	Source string `json:"source"`
	Kind   Kind   `json:"kind"`
	Error  string `json:"error"`
}

// BatchResult aggregates per-image outcomes. A failed image never aborts
// the batch; the operator reads the report and decides what to re-run.
type BatchResult struct {
	Results  []Result  `json:"results"`
	Failures []Failure `json:"failures"`
}

// Progress is called after each image finishes, in completion order.
type Progress func(done, total int)

// Batch compresses paths concurrently on cfg.Workers workers. Result order
// follows completion, not input; each Result carries its Source path so
// downstream stages re-associate by identifier.
func Batch(ctx context.Context, paths []string, cfg Config, progress Progress) *BatchResult {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	jobs := make(chan string)
	batch := &BatchResult{}

	var (
		mu   sync.Mutex
		done int
		wg   sync.WaitGroup
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				res, err := Compress(path, cfg)

				mu.Lock()
				if err != nil {
					var kind Kind
					if ce, ok := err.(*Error); ok {
						kind = ce.Kind
					}
					batch.Failures = append(batch.Failures, Failure{
						Source: path,
						Kind:   kind,
						Error:  err.Error(),
					})
				} else {
					if res.OverBudget {
						slog.Warn("image still over budget at quality floor",
							"source", path, "bytes", res.Bytes, "quality", res.Quality)
					}
					batch.Results = append(batch.Results, *res)
				}
				done++
				n := done
				mu.Unlock()

				if progress != nil {
					progress(n, len(paths))
				}
			}
		}()
	}

	for _, p := range paths {
		select {
		case jobs <- p:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return batch
		}
	}
	close(jobs)
	wg.Wait()

	return batch
}
