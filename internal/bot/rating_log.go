package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Per-user transcripts of uploads, state changes and replies. Each user has
// one file, truncated on /start.

var (
	ratingLogDir = ""
	ratingLogMu  sync.Mutex
)

// InitRatingLog enables transcripts in dir. Transcripts are off until this
// is called.
func InitRatingLog(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	ratingLogMu.Lock()
	ratingLogDir = dir
	ratingLogMu.Unlock()
	return nil
}

func getLogPath(userID int64) (string, bool) {
	ratingLogMu.Lock()
	defer ratingLogMu.Unlock()
	if ratingLogDir == "" {
		return "", false
	}
	return filepath.Join(ratingLogDir, fmt.Sprintf("rating_%d.log", userID)), true
}

// StartRatingLog truncates the transcript for a user.
func StartRatingLog(userID int64) {
	logPath, ok := getLogPath(userID)
	if !ok {
		return
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("failed to start rating log")
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "=== Rating Log ===\nUser: %d\nStarted: %s\n\n", userID, time.Now().Format("2006-01-02 15:04:05"))
}

func appendLog(userID int64, prefix, msg string) {
	logPath, ok := getLogPath(userID)
	if !ok {
		return
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("failed to write rating log")
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[%s] %s %s\n", time.Now().Format("15:04:05"), prefix, msg)
}

// LogUser logs a user message/action.
func LogUser(userID int64, format string, args ...any) {
	appendLog(userID, "USER    ", fmt.Sprintf(format, args...))
}

// LogBot logs a bot response.
func LogBot(userID int64, format string, args ...any) {
	appendLog(userID, "BOT     ", fmt.Sprintf(format, args...))
}

// LogState logs view state transitions.
func LogState(userID int64, format string, args ...any) {
	appendLog(userID, "STATE   ", fmt.Sprintf(format, args...))
}

// LogError logs errors.
func LogError(userID int64, format string, args ...any) {
	appendLog(userID, "ERROR   ", fmt.Sprintf(format, args...))
}

// LogCallback logs callback events.
func LogCallback(userID int64, format string, args ...any) {
	appendLog(userID, "CALLBACK", fmt.Sprintf(format, args...))
}
