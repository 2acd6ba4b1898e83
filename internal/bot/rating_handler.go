package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/raine/chadorchud-bot/internal/intake"
)

// photoMIMEType is what Telegram re-encodes every compressed photo to.
const photoMIMEType = "image/jpeg"

// handlePhotoMessage rates the largest size of a compressed photo.
func (b *Bot) handlePhotoMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	// Telegram lists sizes smallest first
	photo := message.Photo[len(message.Photo)-1]

	b.submitImage(ctx, session, message, imageSource{
		FileID:    photo.FileID,
		MessageID: message.MessageID,
		IsPhoto:   true,
		MIMEType:  photoMIMEType,
	}, "photo.jpg", int64(photo.FileSize))
}

// handleDocumentMessage rates an image sent as a file.
func (b *Bot) handleDocumentMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	doc := message.Document

	b.submitImage(ctx, session, message, imageSource{
		FileID:    doc.FileID,
		MessageID: message.MessageID,
		MIMEType:  doc.MimeType,
	}, doc.FileName, int64(doc.FileSize))
}

// submitImage validates, downloads and hands an image to the rating
// controller. Rejected files get an inline reply and leave the current
// state untouched.
func (b *Bot) submitImage(ctx context.Context, session *UserSession, message *tgbotapi.Message, src imageSource, name string, size int64) {
	LogUser(session.userId, "[image] %s %s (%d bytes)", name, src.MIMEType, size)

	// Reject on declared metadata before downloading anything
	if err := b.validator.Check(src.MIMEType, size); err != nil {
		b.replyValidationError(session, message, err)
		return
	}

	data, err := b.downloader.DownloadFromTelegramFileID(ctx, b.tg.GetFileDirectURL, src.FileID)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Str("fileID", src.FileID).Msg("failed to download image")
		LogError(session.userId, "download failed: %v", err)
		session.reply(MsgDownloadFailed)
		return
	}

	payload, err := b.validator.Validate(intake.File{
		Name:     name,
		MIMEType: src.MIMEType,
		Data:     data,
	})
	if err != nil {
		b.replyValidationError(session, message, err)
		return
	}

	log.Info().
		Int64("userId", session.userId).
		Str("mimeType", payload.MIMEType).
		Int("size", payload.Size).
		Int("width", payload.Width).
		Int("height", payload.Height).
		Msg("submitting image for rating")

	session.view.source = src
	session.view.token = session.rating.Submit(src.FileID, payload)
	b.renderRating(ctx, session)
}

func (b *Bot) replyValidationError(session *UserSession, message *tgbotapi.Message, err error) {
	var verr *intake.ValidationError
	if !errors.As(err, &verr) {
		session.replyWithError(err)
		return
	}

	LogError(session.userId, "rejected: %s", verr.Message)
	msg := tgbotapi.NewMessage(session.userId, verr.Message)
	msg.ReplyToMessageID = message.MessageID
	session.replyWithMessage(msg)
}
