package bot

import (
	"fmt"
	"strings"

	"github.com/raine/chadorchud-bot/internal/llm"
	"github.com/raine/chadorchud-bot/internal/rating"
)

// historyLimit is how many ratings /history shows.
const historyLimit = 5

// handleHistoryCommand lists the user's most recent ratings.
func (b *Bot) handleHistoryCommand(session *UserSession) {
	if b.store == nil {
		session.reply(MsgHistoryNotAvailable)
		return
	}

	ratings, err := b.store.RecentRatings(session.userId, historyLimit)
	if err != nil {
		session.replyWithError(err)
		return
	}
	if len(ratings) == 0 {
		session.reply(MsgHistoryEmpty)
		return
	}

	var sb strings.Builder
	sb.WriteString(MsgHistoryHeader)
	for _, r := range ratings {
		sb.WriteString(fmt.Sprintf(MsgHistoryItem,
			verdictEmoji(rating.Verdict(r.Verdict)),
			r.Score,
			escapeMarkdown(r.Title),
			r.CreatedAt.Format("2006-01-02"),
		))
	}
	session._reply(sb.String())
}

// handleStatsCommand shows aggregate numbers. Only the admin user can use it.
func (b *Bot) handleStatsCommand(session *UserSession) {
	if b.adminID == 0 || session.userId != b.adminID {
		session.reply(MsgStatsNotAllowed)
		return
	}
	if b.store == nil {
		session.reply(MsgHistoryNotAvailable)
		return
	}

	stats, err := b.store.Stats()
	if err != nil {
		session.replyWithError(err)
		return
	}

	text := formatReplyText(MsgStats,
		stats.Total, stats.Users, stats.Chads, stats.Chuds, stats.AverageScore,
		b.state.Count(),
	)
	if reporter, ok := b.analyzer.(llm.UsageReporter); ok {
		u := reporter.Usage()
		text += "\n\n" + formatReplyText(MsgStatsUsage, u.Calls, u.InputTokens, u.OutputTokens, u.CostUSD)
	}
	session._reply(text)
}
