package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/xaenox/herdbot/internal/assistant"
	"github.com/xaenox/herdbot/internal/bot"
	"github.com/xaenox/herdbot/internal/completion"
	"github.com/xaenox/herdbot/internal/conversation"
	"github.com/xaenox/herdbot/internal/storage"
	"github.com/xaenox/herdbot/internal/vocabulary"
	"github.com/xaenox/herdbot/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize logger
	logger, _ := zap.NewProduction()
	if cfg.Log.Development {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load vocabulary
	vocab, err := loadVocabulary(cfg.Vocabulary.Path)
	if err != nil {
		logger.Fatal("Failed to load vocabulary", zap.Error(err), zap.String("path", cfg.Vocabulary.Path))
	}
	logger.Info("Vocabulary loaded", zap.Int("breeds", len(vocab.Breeds())))

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}
		store, err = storage.NewPostgresStorage(ctx, dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize completion backend
	completer, err := completion.New(ctx, completionOptions(cfg), logger)
	if err != nil {
		logger.Fatal("Failed to initialize completion backend", zap.Error(err))
	}
	logger.Info("Using completion backend", zap.String("provider", cfg.Completion.Provider))

	assistantCfg := assistant.Config{
		DefaultBreed:         cfg.Assistant.DefaultBreed,
		UpdateStateOnRefusal: cfg.Assistant.UpdateStateOnRefusal,
		Timeout:              cfg.Completion.Timeout,
	}
	if topic, ok := vocabulary.ParseTopic(cfg.Assistant.DefaultTopic); ok {
		assistantCfg.DefaultTopic = topic
	} else if cfg.Assistant.DefaultTopic != "" {
		logger.Warn("Ignoring unknown default topic", zap.String("topic", cfg.Assistant.DefaultTopic))
	}

	sessions := conversation.NewRegistry(cfg.Assistant.SessionTTL, logger)
	a := assistant.New(vocab, completer, sessions, store, assistantCfg, logger)

	// Initialize bot
	b, err := bot.New(cfg.Telegram, a, cfg.Assistant.HistoryLimit, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(ctx); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}

func loadVocabulary(path string) (*vocabulary.Vocabulary, error) {
	if path == "" {
		return vocabulary.Default()
	}
	return vocabulary.LoadFile(path)
}

func completionOptions(cfg *config.Config) completion.Options {
	opts := completion.Options{
		Provider:    cfg.Completion.Provider,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
	}

	switch strings.ToLower(cfg.Completion.Provider) {
	case completion.ProviderGemini:
		opts.APIKey = cfg.Gemini.APIKey
		opts.BaseURL = cfg.Gemini.BaseURL
		opts.Model = cfg.Gemini.Model
	case completion.ProviderRelay:
		opts.BaseURL = cfg.Relay.URL
		opts.RelayToken = cfg.Relay.Token
	default:
		opts.APIKey = cfg.OpenAI.APIKey
		opts.BaseURL = cfg.OpenAI.BaseURL
		opts.Model = cfg.OpenAI.Model
	}

	return opts
}
