package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/chadorchud-bot/internal/intake"
	"github.com/raine/chadorchud-bot/internal/rating"
)

// recordingHandler logs message types in the order the worker sees them.
// A message of type "hold" blocks until release is closed.
type recordingHandler struct {
	mu      sync.Mutex
	seen    []string
	started chan struct{}
	release chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (h *recordingHandler) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	h.mu.Lock()
	h.seen = append(h.seen, msg.Type)
	h.mu.Unlock()

	switch msg.Type {
	case "explode":
		panic("handler blew up")
	case "hold":
		h.started <- struct{}{}
		<-h.release
	}
}

func (h *recordingHandler) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func newTestSession(id int64, handler MessageHandler) *UserSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &UserSession{
		userId:     id,
		inbox:      make(chan SessionMessage, 10),
		ctx:        ctx,
		cancel:     cancel,
		handler:    handler,
		lastActive: time.Now(),
	}
	s.StartWorker()
	return s
}

func TestSession_ProcessesInArrivalOrder(t *testing.T) {
	handler := newRecordingHandler()
	session := newTestSession(1, handler)
	defer session.Stop()

	session.Send(SessionMessage{Type: "photo"})
	session.Send(SessionMessage{Type: "rating_state"})
	session.Send(SessionMessage{Type: "loading_tick"})
	session.SendSync(SessionMessage{Type: "callback"})

	assert.Equal(t, []string{"photo", "rating_state", "loading_tick", "callback"}, handler.types())
}

func TestSession_SurvivesHandlerPanic(t *testing.T) {
	handler := newRecordingHandler()
	session := newTestSession(1, handler)
	defer session.Stop()

	session.SendSync(SessionMessage{Type: "explode"})
	session.SendSync(SessionMessage{Type: "text"})

	assert.Equal(t, []string{"explode", "text"}, handler.types())
}

func TestSession_BlockedUserDoesNotBlockOthers(t *testing.T) {
	slow := newRecordingHandler()
	slowSession := newTestSession(1, slow)
	defer slowSession.Stop()

	fast := newRecordingHandler()
	fastSession := newTestSession(2, fast)
	defer fastSession.Stop()

	go slowSession.SendSync(SessionMessage{Type: "hold"})
	select {
	case <-slow.started:
	case <-time.After(time.Second):
		t.Fatal("slow session did not start processing")
	}

	fastSession.SendSync(SessionMessage{Type: "text"})

	assert.Equal(t, []string{"text"}, fast.types())
	assert.Equal(t, []string{"hold"}, slow.types())
	close(slow.release)
}

func TestSession_SendSyncWaitsForHandler(t *testing.T) {
	handler := newRecordingHandler()
	session := newTestSession(1, handler)
	defer session.Stop()

	returned := make(chan struct{})
	go func() {
		session.SendSync(SessionMessage{Type: "hold"})
		close(returned)
	}()

	<-handler.started
	select {
	case <-returned:
		t.Fatal("SendSync returned while the handler was still running")
	case <-time.After(30 * time.Millisecond):
	}

	close(handler.release)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("SendSync did not return after the handler finished")
	}
}

func TestSession_StopReleasesQueuedSyncCallers(t *testing.T) {
	handler := newRecordingHandler()
	session := newTestSession(1, handler)

	go session.SendSync(SessionMessage{Type: "hold"})
	<-handler.started

	waiters := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			session.SendSync(SessionMessage{Type: "text"})
			waiters <- struct{}{}
		}()
	}

	stopped := make(chan struct{})
	go func() {
		session.Stop()
		close(stopped)
	}()
	close(handler.release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	for i := 0; i < 3; i++ {
		select {
		case <-waiters:
		case <-time.After(time.Second):
			t.Fatal("SendSync caller was left waiting after Stop")
		}
	}
}

func TestSession_SendAfterStopReturns(t *testing.T) {
	session := newTestSession(1, newRecordingHandler())
	session.Stop()

	done := make(chan struct{})
	go func() {
		session.SendSync(SessionMessage{Type: "text"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendSync blocked on a stopped session")
	}
}

func TestSession_TouchUpdatesLastActive(t *testing.T) {
	session := newTestSession(1, newRecordingHandler())
	defer session.Stop()

	session.mu.Lock()
	session.lastActive = time.Now().Add(-time.Hour)
	session.mu.Unlock()

	session.touch()

	assert.WithinDuration(t, time.Now(), session.LastActive(), time.Second)
}

func TestSession_StopCancelsRunningAnalysis(t *testing.T) {
	analyzer := newFakeAnalyzer()
	session := newTestSession(1, newRecordingHandler())
	session.rating = rating.NewController(analyzer, rating.WithListener(session.onRatingChange))

	token := session.rating.Submit("photo-1", intake.Payload{Base64: "AAAA", MIMEType: "image/jpeg", Size: 3})
	require.NotZero(t, token)
	require.True(t, session.IsAnalyzing())

	session.Stop()

	assert.False(t, session.IsAnalyzing())
	failed, ok := session.rating.State().(rating.Failed)
	require.True(t, ok)
	assert.Equal(t, "photo-1", failed.ImageSrc)
}
