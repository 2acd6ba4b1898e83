package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/raine/chadorchud-bot/internal/catalog"
	"github.com/raine/chadorchud-bot/internal/intake"
	"github.com/raine/chadorchud-bot/internal/rating"
	"github.com/raine/chadorchud-bot/internal/storage"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Options configures a Bot. Store may be nil, in which case ratings are
// not persisted and /history is unavailable.
type Options struct {
	Analyzer    rating.Analyzer
	Catalog     *catalog.Catalog
	Store       storage.RatingStore
	AdminID     int64
	MaxUploadMB int
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg         BotAPI
	state      BotState
	analyzer   rating.Analyzer
	catalog    *catalog.Catalog
	store      storage.RatingStore
	validator  *intake.Validator
	downloader *ImageDownloader
	adminID    int64
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, opts Options) *Bot {
	validator := intake.NewValidator(opts.MaxUploadMB)
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	bot := &Bot{
		tg:         tg,
		analyzer:   opts.Analyzer,
		catalog:    cat,
		store:      opts.Store,
		validator:  validator,
		downloader: NewImageDownloader().WithMaxSize(validator.MaxBytes()),
		adminID:    opts.AdminID,
	}
	bot.state = bot.NewBotState()

	return bot
}

// Shutdown stops every session and cancels analyses still in flight.
func (b *Bot) Shutdown() {
	b.state.Shutdown()
}

// EvictIdle stops sessions with no activity for maxIdle.
func (b *Bot) EvictIdle(maxIdle time.Duration) int {
	return b.state.EvictIdle(maxIdle)
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync is like handleUpdate but waits for message processing to complete.
// Used in tests where we need synchronous behavior.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

// dispatchUpdate routes updates to the appropriate session worker.
// If sync is true, it waits for message processing to complete.
func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	var userId int64

	// Determine user ID from the update
	if update.CallbackQuery != nil {
		userId = update.CallbackQuery.From.ID
	} else if update.Message != nil && update.Message.From != nil {
		userId = update.Message.From.ID
	} else {
		return
	}

	session, err := b.state.getUserSession(userId)
	if err != nil {
		log.Error().Err(err).Send()
		return
	}

	// Helper to send sync or async based on flag
	send := func(msg SessionMessage) {
		if sync {
			session.SendSync(msg)
		} else {
			session.Send(msg)
		}
	}

	// Dispatch to session worker based on update type
	if update.CallbackQuery != nil {
		send(SessionMessage{
			Type:          "callback",
			Ctx:           ctx,
			CallbackQuery: update.CallbackQuery,
		})
		return
	}

	message := update.Message
	log.Info().Str("text", message.Text).Str("caption", message.Caption).Msg("got message")

	switch {
	case len(message.Photo) > 0:
		send(SessionMessage{Type: "photo", Ctx: ctx, Message: message})
	case message.Document != nil:
		send(SessionMessage{Type: "document", Ctx: ctx, Message: message})
	default:
		send(SessionMessage{Type: "text", Ctx: ctx, Message: message})
	}
}

// HandleSessionMessage implements MessageHandler interface.
// This is called by the session worker goroutine for sequential processing.
// No mutex locking is needed here since only one goroutine accesses session state.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	switch msg.Type {
	case "callback":
		b.handleCallbackQuery(ctx, session, msg.CallbackQuery)
	case "photo":
		b.handlePhotoMessage(ctx, session, msg.Message)
	case "document":
		b.handleDocumentMessage(ctx, session, msg.Message)
	case "text":
		b.handleCommand(ctx, session, msg.Message)
	case "rating_state":
		b.renderRating(ctx, session)
	case "loading_tick":
		b.handleLoadingTick(session, msg.Token)
	}
}

// handleCommand processes bot commands.
// Called from session worker - no locking needed.
func (b *Bot) handleCommand(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	LogUser(session.userId, "%s", message.Text)

	command, _ := parseCommand(message.Text)
	switch command {
	case "/start":
		StartRatingLog(session.userId)
		b.resetRating(ctx, session)
	case "/reset":
		b.resetRating(ctx, session)
	case "/history":
		b.handleHistoryCommand(session)
	case "/stats":
		b.handleStatsCommand(session)
	case "/help":
		session.reply(MsgHelp)
	case "/version":
		session.reply(MsgVersionInfo, Version, BuildTime)
	default:
		session.reply(MsgSendPhoto)
	}
}

// handleCallbackQuery handles inline keyboard button presses.
// Called from session worker - no locking needed.
func (b *Bot) handleCallbackQuery(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	// Answer the callback to remove the loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	b.tg.Request(callback)

	LogCallback(session.userId, "%s", query.Data)

	if strings.HasPrefix(query.Data, "rate:") {
		b.handleRatingCallback(ctx, session, query)
	}
}

// handleRatingCallback handles the buttons attached to rating messages.
func (b *Bot) handleRatingCallback(ctx context.Context, session *UserSession, query *tgbotapi.CallbackQuery) {
	switch strings.TrimPrefix(query.Data, "rate:") {
	case "reset":
		b.resetRating(ctx, session)
	default:
		log.Warn().Str("data", query.Data).Msg("unknown rating callback")
	}
}

// resetRating abandons whatever the user was doing and shows the intro.
// A running analysis is left to finish; its result is ignored.
func (b *Bot) resetRating(ctx context.Context, session *UserSession) {
	session.rating.Reset()
	b.renderRating(ctx, session)
}
