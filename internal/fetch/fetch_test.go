package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bianoble/craftlaunch/internal/verify"
)

type artifactServer struct {
	*httptest.Server
	mu       sync.Mutex
	bodies   map[string][]byte
	fails    map[string]int // remaining 500s per path
	hits     map[string]int
	inFlight int32
	maxSeen  int32
	delay    time.Duration
}

func newArtifactServer(t *testing.T) *artifactServer {
	t.Helper()
	s := &artifactServer{
		bodies: map[string][]byte{},
		fails:  map[string]int{},
		hits:   map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *artifactServer) serve(w http.ResponseWriter, r *http.Request) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		old := atomic.LoadInt32(&s.maxSeen)
		if n <= old || atomic.CompareAndSwapInt32(&s.maxSeen, old, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.bodies[r.URL.Path]
	fail := s.fails[r.URL.Path]
	if fail > 0 {
		s.fails[r.URL.Path] = fail - 1
	}
	s.mu.Unlock()

	if fail > 0 {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(body)
}

func (s *artifactServer) add(path string, body []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
	return s.URL + path
}

func (s *artifactServer) totalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func jar(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("class bytes for " + name))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func assetRequests(srv *artifactServer, dir string, n int) []Request {
	var reqs []Request
	for i := 0; i < n; i++ {
		body := []byte(fmt.Sprintf("asset-%d", i))
		hash := verify.SHA1(body)
		url := srv.add("/"+hash[:2]+"/"+hash, body)
		reqs = append(reqs, Request{
			URL:  url,
			Dest: filepath.Join(dir, "assets", "objects", hash[:2], hash),
			Kind: verify.KindAsset,
			SHA1: hash,
			Size: int64(len(body)),
		})
	}
	return reqs
}

func TestFetchAllDownloadsAndSkips(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()

	lib := jar(t, "com/example/A.class")
	reqs := append(assetRequests(srv, dir, 5), Request{
		URL:  srv.add("/com/example/a/1.0/a-1.0.jar", lib),
		Dest: filepath.Join(dir, "libraries", "com/example/a/1.0/a-1.0.jar"),
		Kind: verify.KindArchive,
		SHA1: verify.SHA1(lib),
	})

	var progress []Progress
	f := &Fetcher{HTTP: srv.Client(), Progress: func(p Progress) { progress = append(progress, p) }}

	report, err := f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if report.Downloaded != 6 || report.Skipped != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(progress) != 6 {
		t.Fatalf("expected 6 progress events, got %d", len(progress))
	}
	for i, p := range progress {
		if p.Completed != i+1 || p.Total != 6 {
			t.Errorf("progress[%d] = %d/%d", i, p.Completed, p.Total)
		}
	}
	for _, r := range reqs {
		if _, err := os.Stat(r.Dest); err != nil {
			t.Errorf("missing %s: %v", r.Dest, err)
		}
	}

	// A second run over a complete store performs no requests.
	before := srv.totalHits()
	report, err = f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("second FetchAll: %v", err)
	}
	if report.Skipped != 6 || report.Downloaded != 0 {
		t.Errorf("second report = %+v", report)
	}
	if srv.totalHits() != before {
		t.Errorf("second run made %d requests", srv.totalHits()-before)
	}
}

func TestFetchAllReplacesCorruptFile(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 1)

	os.MkdirAll(filepath.Dir(reqs[0].Dest), 0755)
	os.WriteFile(reqs[0].Dest, []byte("stale"), 0644)

	f := &Fetcher{HTTP: srv.Client()}
	report, err := f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if report.Downloaded != 1 {
		t.Errorf("report = %+v", report)
	}
	data, _ := os.ReadFile(reqs[0].Dest)
	if string(data) != "asset-0" {
		t.Errorf("content = %q", data)
	}
}

func TestFetchAllRetriesTransientFailure(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 1)
	srv.fails[strings.TrimPrefix(reqs[0].URL, srv.URL)] = 2

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	f := &Fetcher{HTTP: srv.Client(), Metrics: metrics}

	report, err := f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if report.Downloaded != 1 || report.Retried != 1 {
		t.Errorf("report = %+v", report)
	}
	if got := testutil.ToFloat64(metrics.retries.WithLabelValues(PoolAsset)); got != 2 {
		t.Errorf("retries metric = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.requests.WithLabelValues(PoolAsset, string(OutcomeDownloaded))); got != 1 {
		t.Errorf("downloaded metric = %v, want 1", got)
	}
}

func TestFetchAllTerminalFailure(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 3)
	srv.fails[strings.TrimPrefix(reqs[1].URL, srv.URL)] = 10

	f := &Fetcher{HTTP: srv.Client(), Attempts: 3}
	report, err := f.FetchAll(context.Background(), reqs)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(fe.Failures) != 1 || fe.Failures[0].Attempts != 3 {
		t.Fatalf("failures = %+v", fe.Failures)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected StatusError 500 in chain, got %v", err)
	}
	if report.Downloaded != 2 {
		t.Errorf("other requests should still complete: %+v", report)
	}

	// Neither the destination nor a temp file survives.
	entries, _ := os.ReadDir(filepath.Dir(reqs[1].Dest))
	for _, e := range entries {
		if e.Name() == filepath.Base(reqs[1].Dest) || strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover file %s", e.Name())
		}
	}
}

func TestFetchAllRejectsInvalidArchive(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()
	req := Request{
		URL:  srv.add("/broken.jar", []byte("<html>not a jar</html>")),
		Dest: filepath.Join(dir, "libraries", "broken.jar"),
		Kind: verify.KindArchive,
	}

	f := &Fetcher{HTTP: srv.Client(), Attempts: 2}
	_, err := f.FetchAll(context.Background(), []Request{req})
	var ie *verify.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrityError in chain, got %v", err)
	}
	if _, statErr := os.Stat(req.Dest); !os.IsNotExist(statErr) {
		t.Error("invalid archive was committed")
	}
}

func TestFetchAllDeduplicatesDestinations(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 1)
	dup := reqs[0]
	dup.Dest = filepath.Join(filepath.Dir(dup.Dest), ".", filepath.Base(dup.Dest))
	reqs = append(reqs, dup, reqs[0])

	f := &Fetcher{HTTP: srv.Client()}
	report, err := f.FetchAll(context.Background(), reqs)
	if err != nil {
		t.Fatal(err)
	}
	if report.Requested != 1 {
		t.Errorf("requested = %d, want 1", report.Requested)
	}
	if srv.totalHits() != 1 {
		t.Errorf("hits = %d, want 1", srv.totalHits())
	}
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	srv := newArtifactServer(t)
	srv.delay = 20 * time.Millisecond
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 12)

	f := &Fetcher{HTTP: srv.Client(), AssetWorkers: 3}
	if _, err := f.FetchAll(context.Background(), reqs); err != nil {
		t.Fatal(err)
	}
	if peak := atomic.LoadInt32(&srv.maxSeen); peak > 3 {
		t.Errorf("saw %d concurrent requests, want at most 3", peak)
	}
}

func TestFetchAllCancelled(t *testing.T) {
	srv := newArtifactServer(t)
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &Fetcher{HTTP: srv.Client()}
	report, err := f.FetchAll(ctx, reqs)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if len(report.Failures) != 4 {
		t.Errorf("failures = %d, want 4", len(report.Failures))
	}
}

func TestFetchAllPerAttemptTimeout(t *testing.T) {
	srv := newArtifactServer(t)
	srv.delay = 200 * time.Millisecond
	dir := t.TempDir()
	reqs := assetRequests(srv, dir, 1)

	f := &Fetcher{HTTP: srv.Client(), Attempts: 2, Timeout: 20 * time.Millisecond}
	_, err := f.FetchAll(context.Background(), reqs)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Failures[0].Attempts != 2 {
		t.Errorf("attempts = %d, want 2", fe.Failures[0].Attempts)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{Failures: []Failure{
		{Request: Request{URL: "https://a"}, Attempts: 3, Err: errors.New("boom")},
		{Request: Request{URL: "https://b"}, Attempts: 3, Err: errors.New("bang")},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "2 artifacts") || !strings.Contains(msg, "https://b: bang") {
		t.Errorf("message = %q", msg)
	}
}
