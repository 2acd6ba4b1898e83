package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/raine/chadorchud-bot/internal/rating"
)

// SessionMessage represents a message to be processed by the session worker.
type SessionMessage struct {
	Type string
	Ctx  context.Context
	Done chan struct{} // Closed when processing is complete (for synchronous dispatch)

	// Message data (only one is set based on Type)
	Message       *tgbotapi.Message
	CallbackQuery *tgbotapi.CallbackQuery
	Text          string

	// Token of the submission a loading_tick belongs to
	Token uint64
}

// MessageSender abstracts the ability to send Telegram messages.
// This interface decouples UserSession from the full Bot struct,
// improving testability.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageHandler is the interface for processing session messages.
// This allows the session to dispatch to external handlers without circular dependencies.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage)
}

// imageSource is where a submitted image came from.
type imageSource struct {
	FileID    string
	MessageID int
	IsPhoto   bool
	MIMEType  string
}

// ratingView is what has been shown to the user for the controller's state.
// Only the worker touches it.
type ratingView struct {
	rev         uint64 // last rendered revision
	token       uint64 // submission the source belongs to
	source      imageSource
	statusMsgID int // the message cycling loading lines
	loadingIdx  int
	stopLoading context.CancelFunc
}

// UserSession represents a user's session with the bot.
//
// Threading model:
//   - Each session has a dedicated worker goroutine that processes messages sequentially
//   - Handlers are called only from the worker and can access the view without locks
//   - The rating controller has its own lock; its listener only enqueues a
//     rating_state message, and the worker renders the latest snapshot
type UserSession struct {
	userId int64
	sender MessageSender
	mu     sync.Mutex // guards lastActive

	lastActive time.Time

	// Worker channel for sequential message processing
	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler // Set after construction to avoid circular deps

	rating *rating.Controller
	view   ratingView
}

// touch records user activity.
func (s *UserSession) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive returns the time of the last user update.
func (s *UserSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// IsAnalyzing reports whether an analysis is in flight for this user.
func (s *UserSession) IsAnalyzing() bool {
	return s.rating != nil && s.rating.State().Status() == rating.StatusAnalyzing
}

// onRatingChange is the controller listener. It may run on the worker
// (Submit, Reset) or on the analysis goroutine, so it never blocks.
func (s *UserSession) onRatingChange(c rating.Change) {
	LogState(s.userId, "%s -> %s (rev %d)", c.From.Status(), c.To.Status(), c.Rev)
	go s.Send(SessionMessage{Type: "rating_state", Ctx: context.Background()})
}

func (s *UserSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Send()
	return s._reply(formatReplyText(MsgUnexpectedErr, err))
}

// sendTypingAction sends a "typing" chat action to show the user that the bot is processing.
// The typing indicator automatically expires after ~5 seconds in Telegram.
func (s *UserSession) sendTypingAction() {
	action := tgbotapi.NewChatAction(s.userId, tgbotapi.ChatTyping)
	// Use Request instead of Send because sendChatAction returns a boolean, not a Message
	_, err := s.sender.Request(action)
	if err != nil {
		log.Debug().Err(err).Int64("userId", s.userId).Msg("failed to send typing action")
	}
}

// startTypingLoop sends a typing action every 4 seconds until the context is cancelled.
// Run this in a goroutine and cancel the context when done.
func (s *UserSession) startTypingLoop(ctx context.Context) {
	s.sendTypingAction()

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sendTypingAction()
		}
	}
}

// startLoadingLoop posts a loading_tick for token every LoadingInterval
// until the context is cancelled.
func (s *UserSession) startLoadingLoop(ctx context.Context, token uint64) {
	ticker := time.NewTicker(LoadingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Send(SessionMessage{Type: "loading_tick", Ctx: ctx, Token: token})
		}
	}
}

func (s *UserSession) replyWithMessage(msg tgbotapi.Chattable) tgbotapi.Message {
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	} else {
		log.Debug().Int64("userId", s.userId).Int("messageId", sent.MessageID).Msg("sent message")
	}
	return sent
}

func (s *UserSession) _reply(text string) tgbotapi.Message {
	msg := tgbotapi.NewMessage(s.userId, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	LogBot(s.userId, "%s", text)
	return s.replyWithMessage(msg)
}

func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	return s._reply(formatReplyText(text, a...))
}

// request performs an API call whose result is not a message (edits,
// deletes, callback answers).
func (s *UserSession) request(c tgbotapi.Chattable) {
	if _, err := s.sender.Request(c); err != nil {
		log.Warn().Err(err).Int64("userId", s.userId).Msg("telegram request failed")
	}
}

// --- Worker methods ---

// StartWorker starts the session's message processing worker goroutine.
// Must be called after setting the handler.
func (s *UserSession) StartWorker() {
	s.wg.Add(1)
	go s.runWorker()
}

// SetHandler sets the message handler for this session.
func (s *UserSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

// runWorker is the main worker loop that processes messages sequentially.
func (s *UserSession) runWorker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain any remaining messages and signal completion
			for {
				select {
				case msg := <-s.inbox:
					if msg.Done != nil {
						close(msg.Done)
					}
				default:
					return
				}
			}
		case msg := <-s.inbox:
			s.processMessage(msg)
		}
	}
}

// processMessage handles a single message from the inbox.
func (s *UserSession) processMessage(msg SessionMessage) {
	defer func() {
		// Recover from any panics to keep the worker running
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", s.userId).
				Interface("panic", r).
				Msg("recovered from panic in session worker")
		}
		if msg.Done != nil {
			close(msg.Done)
		}
	}()

	if s.handler == nil {
		log.Error().Int64("userId", s.userId).Msg("session handler not set")
		return
	}

	ctx := msg.Ctx
	if ctx == nil {
		ctx = s.ctx
	}
	s.handler.HandleSessionMessage(ctx, s, msg)
}

// Send queues a message for processing by the worker.
// It blocks only while the inbox is full.
func (s *UserSession) Send(msg SessionMessage) {
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		if msg.Done != nil {
			close(msg.Done)
		}
	}
}

// SendSync queues a message and waits for it to be processed.
// Returns when the message has been fully processed by the worker.
func (s *UserSession) SendSync(msg SessionMessage) {
	msg.Done = make(chan struct{})
	s.Send(msg)
	<-msg.Done
}

// Stop stops the worker, cancels any running analysis and waits for both
// to finish.
func (s *UserSession) Stop() {
	s.cancel()
	s.wg.Wait()
	if s.view.stopLoading != nil {
		s.view.stopLoading()
	}
	if s.rating != nil {
		s.rating.Close()
	}
}
