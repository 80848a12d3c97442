package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/extract"
	"github.com/factbase/factbase/internal/model"
)

// Retry policy bounds.
const (
	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 8 * time.Second
)

// retryStatuses are the HTTP responses worth another attempt. Anything
// else that isn't a success fails the URL immediately.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// ErrRetriesExhausted indicates a URL failed every attempt in its retry
// budget.
var ErrRetriesExhausted = errors.New("retry budget exhausted")

// Summary is the outcome of one fetch run. Found is fixed when the URL
// list is enumerated; the other counters are incremented by completing
// workers.
type Summary struct {
	Found   int `json:"found"`
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Fetcher retrieves transcript pages and persists extracted records.
//
// Design decision: We use errgroup.SetLimit for the worker pool and a
// single token-bucket limiter shared by every worker as the pacing gate.
// The limiter serializes request starts while the group bounds how many
// requests are in flight, keeping throughput and concurrency
// independently tunable.
type Fetcher struct {
	store  *database.Store
	client *http.Client
	logger *slog.Logger

	limiter     *rate.Limiter
	concurrency int
	maxRetries  int
	timeout     time.Duration
	batchSize   int
	userAgent   string
	headers     map[string]string
	rawDir      string

	// mu guards the batch buffer, the failed-URL set, and the mutable
	// summary counters. Flushes run while holding it, so at most one
	// flush proceeds at a time.
	mu      sync.Mutex
	buffer  []*model.Transcript
	failed  map[string]bool
	summary Summary
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client. Mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithConcurrency bounds the number of in-flight requests. Default is 4.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithRateLimit sets the pool-wide requests-per-second ceiling.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMaxRetries sets the per-URL retry budget.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithBatchSize sets how many extracted records accumulate before a
// transactional flush.
func WithBatchSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithUserAgent sets the User-Agent request header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithHeaders adds extra request headers to every attempt.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) { f.headers = headers }
}

// WithRawDir sets a directory for raw page captures, one HTML file per
// transcript id. Empty disables the capture.
func WithRawDir(dir string) Option {
	return func(f *Fetcher) { f.rawDir = dir }
}

// New creates a Fetcher persisting into store.
func New(store *database.Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		store:       store,
		client:      &http.Client{},
		limiter:     rate.NewLimiter(rate.Limit(1.0), 1),
		concurrency: 4,
		maxRetries:  5,
		timeout:     30 * time.Second,
		batchSize:   50,
		failed:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Run fetches every URL in the list and returns the outcome summary.
// Already-stored transcripts are skipped without a network call, and a
// URL that exhausts its retry budget is remembered and skipped if it
// appears again later in the list. A context cancellation stops new work
// and returns the summary accumulated so far alongside the context error.
func (f *Fetcher) Run(ctx context.Context, urls []string) (*Summary, error) {
	f.mu.Lock()
	f.summary = Summary{Found: len(urls)}
	f.buffer = f.buffer[:0]
	f.mu.Unlock()

	f.logger.Info("starting fetch run",
		"urls", len(urls),
		"concurrency", f.concurrency,
		"batch_size", f.batchSize,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, url := range urls {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			f.processURL(gctx, url)
			return nil
		})
	}

	runErr := g.Wait()

	// Drain whatever is buffered, even on cancellation, so completed
	// work is never lost.
	f.mu.Lock()
	f.flushLocked(context.WithoutCancel(ctx))
	summary := f.summary
	f.mu.Unlock()

	f.logger.Info("fetch run complete",
		"found", summary.Found,
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", time.Since(startTime),
	)

	return &summary, runErr
}

// processURL drives one URL through skip checks, retrying retrieval,
// extraction, and batch admission. All failures are recorded in the
// summary rather than propagated.
func (f *Fetcher) processURL(ctx context.Context, url string) {
	id := extract.TranscriptID(url)

	f.mu.Lock()
	alreadyFailed := f.failed[url]
	f.mu.Unlock()
	if alreadyFailed {
		f.count(func(s *Summary) { s.Skipped++ })
		return
	}

	if skip, err := f.alreadyStored(ctx, id); err != nil {
		f.logger.Warn("skip check failed", "url", url, "error", err)
	} else if skip {
		f.logger.Debug("already stored", "id", id)
		f.count(func(s *Summary) { s.Skipped++ })
		return
	}

	body, notModified, err := f.fetchWithRetry(ctx, url)
	if notModified {
		f.count(func(s *Summary) { s.Skipped++ })
		return
	}
	if err != nil {
		f.logger.Warn("fetch failed", "url", url, "error", err)
		f.mu.Lock()
		f.failed[url] = true
		f.summary.Failed++
		f.mu.Unlock()
		return
	}

	if f.rawDir != "" {
		if err := f.writeRawCapture(id, body); err != nil {
			f.logger.Warn("raw capture failed", "id", id, "error", err)
		}
	}

	tr, err := extract.Extract(string(body), url)
	if err != nil {
		f.logger.Warn("extraction failed", "url", url, "error", err)
		f.mu.Lock()
		f.failed[url] = true
		f.summary.Failed++
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.buffer = append(f.buffer, tr)
	f.summary.Fetched++
	if len(f.buffer) >= f.batchSize {
		f.flushLocked(ctx)
	}
	f.mu.Unlock()
}

// alreadyStored reports whether the id is in the store or has a prior
// raw capture on disk.
func (f *Fetcher) alreadyStored(ctx context.Context, id string) (bool, error) {
	stored, err := f.store.HasTranscript(ctx, id)
	if err != nil || stored {
		return stored, err
	}
	if f.rawDir == "" {
		return false, nil
	}
	_, err = os.Stat(f.rawCapturePath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// fetchWithRetry retrieves one URL, waiting on the pacing gate before
// every attempt. Returns notModified=true for a 304 response.
func (f *Fetcher) fetchWithRetry(ctx context.Context, url string) (body []byte, notModified bool, err error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}

		body, status, err := f.attempt(ctx, url)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusNotModified:
			return nil, true, nil
		case status == http.StatusOK:
			return body, false, nil
		case retryStatuses[status]:
			lastErr = fmt.Errorf("server returned %d", status)
		default:
			return nil, false, fmt.Errorf("server returned %d", status)
		}
	}

	return nil, false, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// attempt issues a single request with its own timeout.
func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// flushLocked persists the current buffer as one transaction. Callers
// must hold f.mu. On failure every record in the batch counts as failed.
func (f *Fetcher) flushLocked(ctx context.Context) {
	if len(f.buffer) == 0 {
		return
	}
	batch := f.buffer
	f.buffer = nil

	if err := f.store.FlushBatch(ctx, batch); err != nil {
		f.logger.Error("batch flush failed",
			"records", len(batch),
			"error", err,
		)
		f.summary.Fetched -= len(batch)
		f.summary.Failed += len(batch)
		for _, tr := range batch {
			f.failed[tr.URL] = true
		}
		return
	}
	f.logger.Info("batch flushed", "records", len(batch))
}

// rawCapturePath is the on-disk location of a transcript's raw HTML.
func (f *Fetcher) rawCapturePath(id string) string {
	return filepath.Join(f.rawDir, id+".html")
}

// writeRawCapture stores the raw page markup for offline reprocessing.
func (f *Fetcher) writeRawCapture(id string, body []byte) error {
	if err := os.MkdirAll(f.rawDir, 0750); err != nil {
		return err
	}
	return os.WriteFile(f.rawCapturePath(id), body, 0600)
}

// count applies a summary mutation under the lock.
func (f *Fetcher) count(fn func(*Summary)) {
	f.mu.Lock()
	fn(&f.summary)
	f.mu.Unlock()
}
