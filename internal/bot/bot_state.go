package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raine/chadorchud-bot/internal/rating"
)

type BotState struct {
	bot      *Bot
	mu       sync.Mutex
	sessions map[int64]*UserSession
}

func (bs *BotState) newUserSession(userId int64) *UserSession {
	ctx, cancel := context.WithCancel(context.Background())
	session := &UserSession{
		userId:     userId,
		sender:     bs.bot.tg,
		lastActive: time.Now(),
		inbox:      make(chan SessionMessage, 10), // Buffered to avoid blocking
		ctx:        ctx,
		cancel:     cancel,
	}
	session.rating = rating.NewController(bs.bot.analyzer, rating.WithListener(session.onRatingChange))

	log.Info().Int64("userId", userId).Msg("new user session created")
	return session
}

// getUserSession returns the session for userId, creating it if needed,
// and marks it active. Marking happens under bs.mu so EvictIdle cannot
// drop a session between lookup and use.
func (bs *BotState) getUserSession(userId int64) (*UserSession, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if session, ok := bs.sessions[userId]; ok {
		session.touch()
		return session, nil
	}

	session := bs.newUserSession(userId)
	// Set the bot as the message handler and start the worker
	session.SetHandler(bs.bot)
	session.StartWorker()
	bs.sessions[userId] = session
	return session, nil
}

func (b *Bot) NewBotState() BotState {
	return BotState{
		bot:      b,
		sessions: make(map[int64]*UserSession),
	}
}

// Count returns the number of live sessions.
func (bs *BotState) Count() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.sessions)
}

// EvictIdle stops and forgets sessions with no user activity for maxIdle.
// Sessions with an analysis in flight are kept. Returns the number evicted.
func (bs *BotState) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	bs.mu.Lock()
	var idle []*UserSession
	for userId, session := range bs.sessions {
		if session.LastActive().After(cutoff) || session.IsAnalyzing() {
			continue
		}
		idle = append(idle, session)
		delete(bs.sessions, userId)
	}
	bs.mu.Unlock()

	for _, session := range idle {
		session.Stop()
	}
	if len(idle) > 0 {
		log.Info().Int("count", len(idle)).Msg("evicted idle sessions")
	}
	return len(idle)
}

// Shutdown stops all session workers gracefully.
func (bs *BotState) Shutdown() {
	bs.mu.Lock()
	sessions := make([]*UserSession, 0, len(bs.sessions))
	for _, session := range bs.sessions {
		sessions = append(sessions, session)
	}
	bs.mu.Unlock()

	// Stop all workers (outside the lock to avoid blocking)
	for _, session := range sessions {
		session.Stop()
	}
	log.Info().Int("count", len(sessions)).Msg("stopped all session workers")
}
