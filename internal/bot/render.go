package bot

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/raine/chadorchud-bot/internal/rating"
	"github.com/raine/chadorchud-bot/internal/storage"
)

const (
	// maxCaptionLength is Telegram's limit for media captions.
	maxCaptionLength = 1024

	scoreBarWidth = 10

	callbackReset = "rate:reset"
)

// LoadingInterval is how often the analyzing message switches to the next
// loading line.
var LoadingInterval = 2 * time.Second

// renderRating brings the chat in line with the controller's current
// state. Revisions already shown are skipped, so it is safe to call after
// every change notification.
// Called from session worker - no locking needed.
func (b *Bot) renderRating(ctx context.Context, session *UserSession) {
	snap := session.rating.Snapshot()
	if snap.Rev <= session.view.rev {
		return
	}
	session.view.rev = snap.Rev

	switch st := snap.State.(type) {
	case rating.Idle:
		b.showIdle(session)
	case rating.Analyzing:
		b.showAnalyzing(session, st)
	case rating.Result:
		b.showResult(session, st)
	case rating.Failed:
		b.showFailed(session, st)
	default:
		log.Error().Str("state", snap.State.Status().String()).Msg("unhandled rating state")
	}
}

func (b *Bot) showIdle(session *UserSession) {
	b.clearStatus(session)
	session.view.source = imageSource{}
	session.view.token = 0
	session.reply(MsgWelcome, b.validator.MaxSizeMB())
}

func (b *Bot) showAnalyzing(session *UserSession, st rating.Analyzing) {
	b.clearStatus(session)

	msg := tgbotapi.NewMessage(session.userId, analyzingText(0))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyTarget(session, st)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnCancel, callbackReset),
		),
	)
	sent := session.replyWithMessage(msg)
	session.view.statusMsgID = sent.MessageID
	session.view.loadingIdx = 0

	loadingCtx, cancel := context.WithCancel(session.ctx)
	session.view.stopLoading = cancel
	go session.startTypingLoop(loadingCtx)
	go session.startLoadingLoop(loadingCtx, st.Token)
}

// handleLoadingTick advances the loading line of the analyzing message.
// Ticks from a superseded or finished analysis are ignored.
func (b *Bot) handleLoadingTick(session *UserSession, token uint64) {
	st := session.rating.State()
	if st.Status() != rating.StatusAnalyzing || rating.TokenOf(st) != token || session.view.statusMsgID == 0 {
		return
	}

	session.view.loadingIdx++
	edit := tgbotapi.NewEditMessageText(session.userId, session.view.statusMsgID, analyzingText(session.view.loadingIdx))
	edit.ParseMode = tgbotapi.ModeMarkdown
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(BtnCancel, callbackReset),
		),
	)
	edit.ReplyMarkup = &markup
	session.request(edit)
}

// replyTarget returns the upload message st refers to, or 0 when st holds
// no image or the image is not the one last received.
func replyTarget(session *UserSession, st rating.State) int {
	img, ok := rating.ImageOf(st)
	if src := session.view.source; ok && src.FileID == img {
		return src.MessageID
	}
	return 0
}

func analyzingText(idx int) string {
	line := LoadingMessages[idx%len(LoadingMessages)]
	return MsgAnalyzingHeader + "\n\n_" + line + "_"
}

// clearStatus stops the loading loop and removes the analyzing message.
func (b *Bot) clearStatus(session *UserSession) {
	if session.view.stopLoading != nil {
		session.view.stopLoading()
		session.view.stopLoading = nil
	}
	if session.view.statusMsgID != 0 {
		session.request(tgbotapi.NewDeleteMessage(session.userId, session.view.statusMsgID))
		session.view.statusMsgID = 0
	}
}

func (b *Bot) showResult(session *UserSession, st rating.Result) {
	b.clearStatus(session)

	src := session.view.source
	if src.FileID != st.ImageSrc {
		src = imageSource{FileID: st.ImageSrc}
	}

	card := resultCard(st.Analysis)
	if src.IsPhoto && utf8.RuneCountInString(card) <= maxCaptionLength {
		photo := tgbotapi.NewPhoto(session.userId, tgbotapi.FileID(src.FileID))
		photo.Caption = card
		photo.ParseMode = tgbotapi.ModeMarkdown
		LogBot(session.userId, "%s", card)
		session.replyWithMessage(photo)
	} else {
		msg := tgbotapi.NewMessage(session.userId, card)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyToMessageID = src.MessageID
		LogBot(session.userId, "%s", card)
		session.replyWithMessage(msg)
	}

	kit := tgbotapi.NewMessage(session.userId, kitText(st.Analysis))
	kit.ParseMode = tgbotapi.ModeMarkdown
	kit.ReplyMarkup = b.kitKeyboard(st.Analysis)
	LogBot(session.userId, "%s", kit.Text)
	session.replyWithMessage(kit)

	b.saveRating(session, src, st.Analysis)
}

func (b *Bot) showFailed(session *UserSession, st rating.Failed) {
	b.clearStatus(session)

	text := fmt.Sprintf(MsgAnalysisFailed, escapeMarkdown(st.Message))
	msg := tgbotapi.NewMessage(session.userId, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyTarget(session, st)
	// Retrying cannot help until the analyzer is configured.
	if !st.Configuration {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(BtnTryAgain, callbackReset),
			),
		)
	}
	LogError(session.userId, "%s", st.Message)
	session.replyWithMessage(msg)
}

// resultCard formats the verdict, score, title, explanation and key
// observations as one Markdown message.
func resultCard(a *rating.Analysis) string {
	explanation := bulletList(a.Explanation)
	card := formatReplyText(MsgResultCaption,
		a.Verdict, verdictEmoji(a.Verdict),
		scoreBar(a.Score),
		escapeMarkdown(a.Title),
		explanation,
	)
	if len(a.KeyFeatures) > 0 {
		card += "\n\n" + fmt.Sprintf(MsgKeyObservations, bulletList(a.KeyFeatures))
	}
	return card
}

func verdictEmoji(v rating.Verdict) string {
	if v == rating.VerdictChad {
		return "🗿"
	}
	return "💀"
}

// scoreBar renders a score as e.g. "██████░░░░ 62/100".
func scoreBar(score int) string {
	score = max(0, min(100, score))
	filled := (score*scoreBarWidth + 50) / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", scoreBarWidth-filled) + fmt.Sprintf(" %d/100", score)
}

func bulletList(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("• ")
		sb.WriteString(escapeMarkdown(line))
	}
	return sb.String()
}

func kitText(a *rating.Analysis) string {
	var sb strings.Builder
	for _, imp := range a.Improvements {
		sb.WriteString(fmt.Sprintf(MsgKitItem,
			imp.Category, escapeMarkdown(imp.Product), escapeMarkdown(imp.Suggestion)))
	}
	return fmt.Sprintf(MsgKitHeader, sb.String())
}

// kitKeyboard has one link button per recommended product and a button
// to start over.
func (b *Bot) kitKeyboard(a *rating.Analysis) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, imp := range a.Improvements {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🛒 "+imp.Product, b.catalog.Link(imp.Product)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(BtnUploadAnother, callbackReset),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// saveRating records a finished rating. Failures are logged only.
func (b *Bot) saveRating(session *UserSession, src imageSource, a *rating.Analysis) {
	if b.store == nil {
		return
	}

	products := make([]string, len(a.Improvements))
	for i, imp := range a.Improvements {
		products[i] = imp.Product
	}

	err := b.store.SaveRating(&storage.Rating{
		TelegramID: session.userId,
		Verdict:    string(a.Verdict),
		Score:      a.Score,
		Title:      a.Title,
		MIMEType:   src.MIMEType,
		Products:   products,
	})
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to save rating")
	}
}
