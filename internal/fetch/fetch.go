package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bianoble/craftlaunch/internal/sandbox"
	"github.com/bianoble/craftlaunch/internal/store"
	"github.com/bianoble/craftlaunch/internal/verify"
)

// Defaults applied when the corresponding Fetcher field is zero.
const (
	DefaultLibraryWorkers = 8
	DefaultAssetWorkers   = 16
	DefaultAttempts       = 3
	DefaultTimeout        = 60 * time.Second
)

// Pool names.
const (
	PoolLibrary = "library"
	PoolAsset   = "asset"
)

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request asks for one artifact to be present and valid at Dest.
type Request struct {
	URL  string
	Dest string
	Kind verify.Kind
	SHA1 string
	Size int64
}

func (r Request) expect() verify.Expect {
	return verify.Expect{Kind: r.Kind, SHA1: r.SHA1, Size: r.Size}
}

func (r Request) pool() string {
	if r.Kind == verify.KindAsset {
		return PoolAsset
	}
	return PoolLibrary
}

// Outcome is the final state of a request.
type Outcome string

const (
	OutcomeSkipped    Outcome = "skipped"
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeFailed     Outcome = "failed"
)

// Progress is reported once per completed request.
type Progress struct {
	Pool      string
	Completed int
	Total     int
	Request   Request
	Outcome   Outcome
	Bytes     int64
	Err       error
}

// Failure is a request that exhausted its attempts.
type Failure struct {
	Request  Request
	Attempts int
	Err      error
}

// Report summarises a FetchAll call.
type Report struct {
	Requested  int
	Skipped    int
	Downloaded int
	Retried    int
	Bytes      int64
	Failures   []Failure
}

// FetchError lists every request that could not be satisfied.
type FetchError struct {
	Failures []Failure
}

func (e *FetchError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("fetching %s: failed after %d attempt(s): %s", f.Request.URL, f.Attempts, f.Err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d artifacts could not be fetched:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %s", f.Request.URL, f.Err)
	}
	return b.String()
}

// Unwrap exposes the individual failure causes to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Fetcher downloads artifacts through two bounded worker pools, one for
// libraries and documents and one for asset objects.
type Fetcher struct {
	HTTP           HTTPClient
	Verifier       *verify.Verifier
	LibraryWorkers int
	AssetWorkers   int
	Attempts       int
	Timeout        time.Duration // per attempt

	// Progress is called from the goroutine that called FetchAll, never concurrently.
	Progress func(Progress)
	Metrics  *Metrics
	Logger   *slog.Logger
}

type result struct {
	req      Request
	pool     string
	outcome  Outcome
	attempts int
	bytes    int64
	err      error
}

// FetchAll makes every request present and valid on disk. It returns only
// after every worker has exited. Any request that exhausts its attempts makes
// the whole call fail with a *FetchError; the report is returned either way.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []Request) (*Report, error) {
	unique := f.dedupe(reqs)

	var libs, assets []Request
	for _, r := range unique {
		if r.pool() == PoolAsset {
			assets = append(assets, r)
		} else {
			libs = append(libs, r)
		}
	}

	results := make(chan result)
	var wg sync.WaitGroup
	f.startPool(ctx, &wg, PoolLibrary, libs, workers(f.LibraryWorkers, DefaultLibraryWorkers), results)
	f.startPool(ctx, &wg, PoolAsset, assets, workers(f.AssetWorkers, DefaultAssetWorkers), results)
	go func() {
		wg.Wait()
		close(results)
	}()

	report := &Report{Requested: len(unique)}
	completed := 0
	for res := range results {
		completed++
		switch res.outcome {
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeDownloaded:
			report.Downloaded++
			report.Bytes += res.bytes
		case OutcomeFailed:
			report.Failures = append(report.Failures, Failure{Request: res.req, Attempts: res.attempts, Err: res.err})
		}
		if res.attempts > 1 {
			report.Retried++
		}
		if f.Progress != nil {
			f.Progress(Progress{
				Pool:      res.pool,
				Completed: completed,
				Total:     report.Requested,
				Request:   res.req,
				Outcome:   res.outcome,
				Bytes:     res.bytes,
				Err:       res.err,
			})
		}
	}

	if len(report.Failures) > 0 {
		return report, &FetchError{Failures: report.Failures}
	}
	return report, nil
}

// dedupe keeps the first request per destination so no file has two writers.
func (f *Fetcher) dedupe(reqs []Request) []Request {
	seen := make(map[string]Request, len(reqs))
	out := make([]Request, 0, len(reqs))
	for _, r := range reqs {
		key := filepath.Clean(r.Dest)
		if prev, ok := seen[key]; ok {
			if prev.URL != r.URL {
				f.logger().Warn("conflicting sources for destination", "dest", key, "kept", prev.URL, "dropped", r.URL)
			}
			continue
		}
		seen[key] = r
		out = append(out, r)
	}
	return out
}

func (f *Fetcher) startPool(ctx context.Context, wg *sync.WaitGroup, pool string, reqs []Request, n int, results chan<- result) {
	if len(reqs) == 0 {
		return
	}
	if n > len(reqs) {
		n = len(reqs)
	}

	jobs := make(chan Request)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, r := range reqs {
			select {
			case jobs <- r:
			case <-ctx.Done():
				// Undispatched requests still produce a result each.
				for _, rest := range reqs[i:] {
					results <- result{req: rest, pool: pool, outcome: OutcomeFailed, err: ctx.Err()}
				}
				return
			}
		}
	}()

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				results <- f.process(ctx, pool, r)
			}
		}()
	}
}

func (f *Fetcher) process(ctx context.Context, pool string, r Request) result {
	start := time.Now()
	log := f.logger().With("pool", pool, "url", r.URL, "dest", r.Dest)
	res := result{req: r, pool: pool}

	if store.Exists(r.Dest) {
		err := f.verifier().Check(r.Dest, r.expect())
		if err == nil {
			res.outcome = OutcomeSkipped
			f.Metrics.observe(pool, res.outcome, 0, time.Since(start))
			return res
		}
		log.Info("replacing invalid artifact", "error", err)
	}
	if err := store.Invalidate(r.Dest); err != nil {
		res.outcome = OutcomeFailed
		res.err = err
		f.Metrics.observe(pool, res.outcome, 0, time.Since(start))
		return res
	}

	attempts := f.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		res.attempts = attempt
		n, err := f.download(ctx, r)
		if err == nil {
			res.outcome = OutcomeDownloaded
			res.bytes = n
			res.err = nil
			break
		}
		res.err = err
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			log.Debug("retrying download", "attempt", attempt, "error", err)
			f.Metrics.retry(pool)
		}
	}
	if res.outcome != OutcomeDownloaded {
		res.outcome = OutcomeFailed
		log.Warn("download failed", "attempts", res.attempts, "error", res.err)
	}
	f.Metrics.observe(pool, res.outcome, res.bytes, time.Since(start))
	return res
}

// download performs one attempt: stream to a temp file beside Dest, verify,
// then rename into place. The temp file never survives a failed attempt.
func (f *Fetcher) download(ctx context.Context, r Request) (int64, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: r.URL, StatusCode: resp.StatusCode}
	}

	tmp, err := sandbox.TempFile(r.Dest)
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := f.verifier().Check(tmpPath, r.expect()); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpPath, r.Dest); err != nil {
		return 0, fmt.Errorf("committing %s: %w", r.Dest, err)
	}
	committed = true
	return n, nil
}

func (f *Fetcher) client() HTTPClient {
	if f.HTTP == nil {
		return http.DefaultClient
	}
	return f.HTTP
}

func (f *Fetcher) verifier() *verify.Verifier {
	if f.Verifier == nil {
		return &verify.Verifier{}
	}
	return f.Verifier
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}

func workers(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
