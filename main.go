package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/raine/chadorchud-bot/internal/bot"
	"github.com/raine/chadorchud-bot/internal/catalog"
	"github.com/raine/chadorchud-bot/internal/config"
	"github.com/raine/chadorchud-bot/internal/janitor"
	"github.com/raine/chadorchud-bot/internal/llm"
	"github.com/raine/chadorchud-bot/internal/rating"
	"github.com/raine/chadorchud-bot/internal/storage"
)

const logFileName = "chadorchud-bot.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Try to load existing .env file
	config.LoadEnvFile()

	// Check if required config is missing
	if missing := config.CheckRequiredConfig(); len(missing) > 0 {
		if config.IsInteractiveTerminal() {
			// Interactive terminal - run setup wizard
			if !config.RunSetupWizard() {
				config.WaitOnWindows()
				os.Exit(1)
			}
		} else {
			// Non-interactive (systemd, k8s, etc.) - fail with clear error
			config.FatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	// JOURNAL_STREAM is set by systemd when running as a service.
	// Skip file logging under systemd (journald handles it, and ProtectSystem=strict
	// makes the working directory read-only).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// Local development: log to both stderr and file
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			config.FatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		multiWriter := io.MultiWriter(consoleWriter, fileWriter)
		log.Logger = log.Output(multiWriter)

		log.Info().Str("logFile", logFileName).Msg("logging to file")

		// Per-user rating transcripts are only kept for local runs
		if err := bot.InitRatingLog("."); err != nil {
			log.Warn().Err(err).Msg("failed to initialize rating log")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		config.FatalWithWait("invalid configuration: %v", err)
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			config.FatalWithWait("failed to load product catalog: %v", err)
		}
		log.Info().Str("path", cfg.CatalogPath).Int("products", cat.Len()).Msg("product catalog loaded")
	}

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		config.FatalWithWait("failed to initialize telegram bot: %v", err)
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	// Register bot commands for Telegram's command menu
	bot.RegisterCommands(tg)

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		config.FatalWithWait("failed to initialize rating store: %v", err)
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("rating store initialized")

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer := newAnalyzer(ctx, cfg, cat)

	b := bot.NewBot(tg, bot.Options{
		Analyzer:    analyzer,
		Catalog:     cat,
		Store:       store,
		AdminID:     cfg.AdminID,
		MaxUploadMB: cfg.MaxUploadMB,
	})
	defer b.Shutdown()

	g, ctx := errgroup.WithContext(ctx)

	// Run bot update loop
	g.Go(func() error {
		return runBot(ctx, tg, b)
	})

	// Evict idle sessions and prune old ratings
	janitorService := janitor.NewService(b, store, janitor.Config{
		SessionIdleTimeout: cfg.SessionIdleTimeout,
		RatingRetention:    cfg.RatingRetention,
	})
	g.Go(func() error {
		janitorService.Run(ctx)
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

// newAnalyzer returns the Gemini analyzer, or a stand-in that fails every
// submission with a missing key message when none is configured.
func newAnalyzer(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) rating.Analyzer {
	if !cfg.HasGeminiKey() {
		log.Warn().Msg("GEMINI_API_KEY is not set, every rating will fail until it is configured")
		return llm.Unconfigured{}
	}

	analyzer, err := llm.NewGeminiAnalyzer(ctx, llm.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Catalog: cat,
	})
	if err != nil {
		config.FatalWithWait("failed to initialize gemini vision analyzer: %v", err)
	}
	log.Info().Str("model", cfg.GeminiModel).Msg("gemini vision analyzer initialized")
	return analyzer
}

func runBot(ctx context.Context, tg *tgbotapi.BotAPI, b *bot.Bot) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				wg.Wait()
				return nil
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}
