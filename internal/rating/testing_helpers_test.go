package rating

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raine/chadorchud-bot/internal/catalog"
	"github.com/raine/chadorchud-bot/internal/intake"
)

type analyzeReply struct {
	analysis *Analysis
	err      error
}

// fakeAnalyzer blocks every call until a reply is pushed for it. Calls
// are numbered in the order they start.
type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    []intake.Payload
	pending  []chan analyzeReply
	started  chan struct{}
	readyErr error
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{started: make(chan struct{}, 16)}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, payload intake.Payload) (*Analysis, error) {
	ch := make(chan analyzeReply, 1)
	f.mu.Lock()
	f.calls = append(f.calls, payload)
	f.pending = append(f.pending, ch)
	f.mu.Unlock()
	f.started <- struct{}{}

	select {
	case r := <-ch:
		return r.analysis, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeAnalyzer) Ready() error { return f.readyErr }

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAnalyzer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("analysis was not started")
	}
}

func (f *fakeAnalyzer) reply(i int, r analyzeReply) {
	f.mu.Lock()
	ch := f.pending[i]
	f.mu.Unlock()
	ch <- r
}

func (f *fakeAnalyzer) succeed(i int, a *Analysis) { f.reply(i, analyzeReply{analysis: a}) }
func (f *fakeAnalyzer) fail(i int, err error)      { f.reply(i, analyzeReply{err: err}) }

// recorder collects controller changes.
type recorder struct {
	mu      sync.Mutex
	changes []Change
	notify  chan Change
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan Change, 64)}
}

func (r *recorder) listen(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
	r.notify <- c
}

// waitFor returns the first change reaching status.
func (r *recorder) waitFor(t *testing.T, status Status) Change {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case c := <-r.notify:
			if c.To.Status() == status {
				return c
			}
		case <-timeout:
			t.Fatalf("no transition to %s", status)
			return Change{}
		}
	}
}

func sampleAnalysis(score int) *Analysis {
	return &Analysis{
		Verdict:     VerdictChad,
		Score:       score,
		Title:       "X",
		Explanation: []string{"a", "b", "c"},
		KeyFeatures: []string{"f1", "f2"},
		Improvements: []Improvement{
			{Category: catalog.CategoryGym, Suggestion: "Add width", Product: "Weighted Vest"},
			{Category: catalog.CategoryGrooming, Suggestion: "Clear skin", Product: "Retinol Serum"},
			{Category: catalog.CategoryEnhancement, Suggestion: "Hairline", Product: "Finasteride"},
		},
	}
}

var errRemote = errors.New("boom")
