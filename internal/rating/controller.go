package rating

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/raine/chadorchud-bot/internal/intake"
	"github.com/rs/zerolog/log"
)

// Analyzer turns an accepted image into an Analysis.
type Analyzer interface {
	Analyze(ctx context.Context, payload intake.Payload) (*Analysis, error)
}

// Readiness is implemented by analyzers that can report missing
// configuration before any network call is made.
type Readiness interface {
	Ready() error
}

// Change describes one accepted transition. Rev increases by one for every
// accepted transition, so listeners can drop notifications that arrive out
// of order.
type Change struct {
	From State
	To   State
	Rev  uint64
}

// Snapshot is the current state together with its revision.
type Snapshot struct {
	State State
	Rev   uint64
}

type Option func(*Controller)

// WithListener registers fn to be called after every accepted transition.
// fn is called without the controller lock held, possibly from the
// goroutine running the analysis.
func WithListener(fn func(Change)) Option {
	return func(c *Controller) {
		c.listener = fn
	}
}

// Controller owns the view state for one user. All mutation goes through
// Transition.
type Controller struct {
	analyzer Analyzer
	listener func(Change)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	state State
	rev   uint64
	seq   uint64
}

func NewController(analyzer Analyzer, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		analyzer: analyzer,
		ctx:      ctx,
		cancel:   cancel,
		state:    Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Rev: c.rev}
}

// Submit moves to Analyzing with imageSrc and starts the analysis in the
// background. It returns the token of the new submission, or 0 if imageSrc
// is empty. When the analyzer is not usable the submission fails at once
// and the Error state keeps imageSrc.
func (c *Controller) Submit(imageSrc string, payload intake.Payload) uint64 {
	c.mu.Lock()
	c.seq++
	token := c.seq
	change, ok := c.applyLocked(SubmitEvent{ImageSrc: imageSrc, Token: token})
	c.mu.Unlock()
	if !ok {
		return 0
	}
	c.notify(change)

	if err := c.ready(); err != nil {
		log.Warn().Err(err).Uint64("token", token).Msg("analyzer not ready")
		c.dispatch(failure(token, err))
		return token
	}

	c.wg.Add(1)
	go c.run(token, payload)
	return token
}

// Reset returns to Idle. An analysis still running keeps running, but its
// outcome is discarded.
func (c *Controller) Reset() {
	c.dispatch(ResetEvent{})
}

// Fail moves to Error with message. From Analyzing the current image is
// kept.
func (c *Controller) Fail(message string) {
	c.dispatch(FailEvent{Message: message})
}

// Wait blocks until every analysis started so far has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight analyses and waits for them to return.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) ready() error {
	if c.analyzer == nil {
		return ErrNotConfigured
	}
	if r, ok := c.analyzer.(Readiness); ok {
		return r.Ready()
	}
	return nil
}

func (c *Controller) run(token uint64, payload intake.Payload) {
	defer c.wg.Done()

	analysis, err := c.analyze(payload)
	if err == nil && analysis == nil {
		err = NewRemoteError(errors.New("analyzer returned no result"))
	}
	if err != nil {
		log.Error().Err(err).Uint64("token", token).Msg("analysis failed")
		c.dispatch(failure(token, err))
		return
	}
	c.dispatch(SucceedEvent{Token: token, Analysis: analysis})
}

func failure(token uint64, err error) FailEvent {
	return FailEvent{
		Token:         token,
		Message:       FailureMessage(err),
		Configuration: IsConfigurationError(err),
	}
}

func (c *Controller) analyze(payload intake.Payload) (analysis *Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			analysis = nil
			err = fmt.Errorf("analyzer panicked: %v", r)
		}
	}()
	return c.analyzer.Analyze(c.ctx, payload)
}

func (c *Controller) dispatch(e Event) bool {
	c.mu.Lock()
	change, ok := c.applyLocked(e)
	c.mu.Unlock()
	if !ok {
		log.Debug().Str("state", c.State().Status().String()).Type("event", e).Msg("discarding stale event")
		return false
	}
	c.notify(change)
	return true
}

func (c *Controller) applyLocked(e Event) (Change, bool) {
	prev := c.state
	next, ok := Transition(prev, e)
	if !ok {
		return Change{}, false
	}
	c.state = next
	c.rev++
	return Change{From: prev, To: next, Rev: c.rev}, true
}

func (c *Controller) notify(change Change) {
	log.Debug().
		Str("from", change.From.Status().String()).
		Str("to", change.To.Status().String()).
		Uint64("rev", change.Rev).
		Msg("view state changed")
	if c.listener != nil {
		c.listener(change)
	}
}
