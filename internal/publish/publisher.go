package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"menuforge/internal/retry"
)

// PublishedAsset is the stable identity of one uploaded object. Its JSON
// shape is the interchange contract with the reconciler.
type PublishedAsset struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	PublishedAt time.Time `json:"publishedAt"`
}

type Config struct {
	Concurrency    int           // simultaneous in-flight publishes
	Pacing         time.Duration // minimum spacing between submissions
	PollInterval   time.Duration
	PollTimeout    time.Duration
	MaxAttempts    int
	RateLimitBase  time.Duration // exponential backoff base for 429s
	RateLimitCap   time.Duration
	TransientDelay time.Duration // fixed delay for 5xx retries
	KeyPrefix      string        // per-run prefix, keeps re-runs from colliding
}

func DefaultConfig() Config {
	return Config{
		Concurrency:    5,
		Pacing:         200 * time.Millisecond,
		PollInterval:   2 * time.Second,
		PollTimeout:    60 * time.Second,
		MaxAttempts:    3,
		RateLimitBase:  time.Second,
		RateLimitCap:   8 * time.Second,
		TransientDelay: 2 * time.Second,
	}
}

// Item is one asset queued for publishing. DesiredName must already be
// sanitized (slug.Filename); the publisher does not rename.
type Item struct {
	OriginalFilename string
	DesiredName      string
	ContentType      string
	Data             []byte
}

type Publisher struct {
	store ObjectStore
	cfg   Config

	mu   sync.Mutex
	last time.Time
}

func New(store ObjectStore, cfg Config) *Publisher {
	return &Publisher{store: store, cfg: cfg}
}

// pace enforces the minimum spacing between remote submissions across
// all workers.
func (p *Publisher) pace(ctx context.Context) error {
	if p.cfg.Pacing <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := time.Now()
	next := p.last.Add(p.cfg.Pacing)
	if next.Before(now) {
		next = now
	}
	p.last = next
	p.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Publish uploads one item, retrying per the configured policy. Rate
// limits back off exponentially, server-side failures wait a fixed delay,
// client errors surface immediately.
func (p *Publisher) Publish(ctx context.Context, item Item) (*PublishedAsset, error) {
	if item.DesiredName == "" {
		return nil, &RemoteError{Kind: KindClient, Err: errors.New("empty desired name")}
	}
	key := item.DesiredName
	if p.cfg.KeyPrefix != "" {
		key = path.Join(p.cfg.KeyPrefix, item.DesiredName)
	}

	policy := retry.Policy{
		MaxAttempts: p.cfg.MaxAttempts,
		Backoff:     p.backoffFor,
		Retryable:   isRetryable,
	}

	var asset *PublishedAsset
	err := policy.Do(ctx, func() error {
		if err := p.pace(ctx); err != nil {
			return err
		}

		receipt, err := p.store.Submit(ctx, key, bytes.NewReader(item.Data), item.ContentType)
		if err != nil {
			return err
		}

		if receipt.Token != "" {
			if err := p.awaitCompletion(ctx, receipt.Token); err != nil {
				return err
			}
		}

		asset = &PublishedAsset{
			ID:          receipt.ID,
			URL:         receipt.URL,
			Filename:    item.DesiredName,
			PublishedAt: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// awaitCompletion polls a token-bearing submission until the remote
// reports success, reports failure, or the wait budget runs out.
func (p *Publisher) awaitCompletion(ctx context.Context, token string) error {
	poller, ok := p.store.(Poller)
	if !ok {
		return &RemoteError{Kind: KindClient,
			Err: fmt.Errorf("store returned token %q but does not support polling", token)}
	}

	deadline := time.Now().Add(p.cfg.PollTimeout)
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := poller.Poll(ctx, token)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if time.Now().After(deadline) {
				return &RemoteError{Kind: KindTimeout,
					Err: fmt.Errorf("upload not complete after %s", p.cfg.PollTimeout)}
			}
		}
	}
}

func (p *Publisher) backoffFor(attempt int, err error) time.Duration {
	var re *RemoteError
	if errors.As(err, &re) {
		switch re.Kind {
		case KindRateLimited:
			return retry.Exponential(p.cfg.RateLimitBase, p.cfg.RateLimitCap)(attempt, err)
		case KindTransient:
			return p.cfg.TransientDelay
		}
	}
	return 0
}

func isRetryable(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind == KindRateLimited || re.Kind == KindTransient
	}
	return false
}

// Failure is one item the batch gave up on after exhausting retries.
type Failure struct {
	OriginalFilename string     `json:"original_filename"`
	Kind             RemoteKind `json:"kind,omitempty"`
	Error            string     `json:"error"`
}

// BatchResult maps original filenames to their published identities. The
// Assets map, serialized, is the artifact the reconciler consumes.
type BatchResult struct {
	Assets   map[string]PublishedAsset `json:"assets"`
	Failures []Failure                 `json:"failures"`
}

// Progress is called after each item settles, in completion order.
type Progress func(done, total int)

// Batch publishes items on a bounded pool. A failed item is recorded and
// the rest continue; partial success is a valid terminal state.
func (p *Publisher) Batch(ctx context.Context, items []Item, progress Progress) *BatchResult {
	workers := p.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan Item)
	result := &BatchResult{Assets: make(map[string]PublishedAsset, len(items))}

	var (
		mu   sync.Mutex
		done int
		wg   sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				asset, err := p.Publish(ctx, item)

				mu.Lock()
				if err != nil {
					f := Failure{OriginalFilename: item.OriginalFilename, Error: err.Error()}
					var re *RemoteError
					if errors.As(err, &re) {
						f.Kind = re.Kind
					}
					result.Failures = append(result.Failures, f)
					slog.Error("publish failed", "file", item.OriginalFilename, "error", err)
				} else {
					result.Assets[item.OriginalFilename] = *asset
				}
				done++
				n := done
				mu.Unlock()

				if progress != nil {
					progress(n, len(items))
				}
			}
		}()
	}

	for _, item := range items {
		select {
		case jobs <- item:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return result
		}
	}
	close(jobs)
	wg.Wait()

	return result
}
