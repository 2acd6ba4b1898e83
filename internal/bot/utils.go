package bot

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

func formatReplyText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func parseCommand(s string) (string, []string) {
	parts := strings.Split(strings.TrimSpace(s), " ")
	// Commands in groups arrive as /cmd@botname
	command, _, _ := strings.Cut(parts[0], "@")
	return command, parts[1:]
}

// escapeMarkdown escapes special characters for Telegram Markdown V1
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "*", "\\*")
	text = strings.ReplaceAll(text, "_", "\\_")
	text = strings.ReplaceAll(text, "`", "\\`")
	text = strings.ReplaceAll(text, "[", "\\[")
	return text
}
