package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Paddy1981/larun-space/internal/analysis"
	"github.com/Paddy1981/larun-space/internal/api"
	"github.com/Paddy1981/larun-space/internal/api/handlers"
	"github.com/Paddy1981/larun-space/internal/cache"
	"github.com/Paddy1981/larun-space/internal/catalog"
	"github.com/Paddy1981/larun-space/internal/llm"
	"github.com/Paddy1981/larun-space/internal/logging"
	"github.com/Paddy1981/larun-space/internal/session"
	"github.com/Paddy1981/larun-space/internal/store"
	"github.com/Paddy1981/larun-space/internal/usage"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewLogger() (*zap.Logger, error) {
	if err := logging.Init(c.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logging.Logger, nil
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewConversationStore(logger *zap.Logger) (store.Store, error) {
	switch c.StoreDriver {
	case "sqlite":
		return store.NewSQLiteStore(c.SQLitePath, logger)
	case "file":
		return store.NewFileStore(c.StorePath, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q (want \"file\" or \"sqlite\")", c.StoreDriver)
	}
}

// ------------------------------------------------------------------------------------------------------
// NewCache builds the response cache: Redis when configured and
// reachable, otherwise the in-process cache.
func (c *Config) NewCache(logger *zap.Logger) cache.Store {
	if c.RedisAddr == "" {
		return cache.NewMemoryCache(c.CacheTTL)
	}

	redisCache, err := cache.NewRedisCache(c.RedisAddr, c.RedisPassword, c.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, using in-memory cache",
			zap.Error(err),
		)
		return cache.NewMemoryCache(c.CacheTTL)
	}
	logger.Info("Connected to Redis")
	return redisCache
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewCatalogClient(cacheStore cache.Store, logger *zap.Logger) *catalog.Client {
	return catalog.NewClient(c.MASTBaseURL, c.CatalogTimeout, cacheStore, logger)
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewGateway(logger *zap.Logger) *llm.Gateway {
	return llm.NewGateway(llm.Options{
		APIKey:      c.CompletionAPIKey,
		BaseURL:     c.CompletionBaseURL,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		TokenBudget: c.ContextTokenBudget,
		Timeout:     c.CompletionTimeout,
	}, analysis.Generate, logger)
}

// ------------------------------------------------------------------------------------------------------
// NewUsageRecorder prefers the AMQP recorder when a broker is
// configured; otherwise events go to the structured log.
func (c *Config) NewUsageRecorder(logger *zap.Logger) usage.Recorder {
	if c.AMQPURL == "" {
		return usage.NewLogRecorder(logger)
	}

	recorder, err := usage.NewAMQPRecorder(c.AMQPURL, c.UsageQueue)
	if err != nil {
		logger.Warn("Failed to connect to AMQP broker, logging usage events instead",
			zap.Error(err),
		)
		return usage.NewLogRecorder(logger)
	}
	logger.Info("Connected to AMQP broker", zap.String("queue", c.UsageQueue))
	return recorder
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewTierReader() usage.TierReader {
	return usage.NewStaticTierReader(c.DefaultTier)
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewSession(st store.Store, gateway *llm.Gateway, recorder usage.Recorder, tiers usage.TierReader, logger *zap.Logger) *session.Session {
	return session.New(st, gateway, recorder, tiers, logger)
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewHandler(
	sess *session.Session,
	st store.Store,
	cat *catalog.Client,
	recorder usage.Recorder,
	tiers usage.TierReader,
	logger *zap.Logger,
) *handlers.Handler {
	return handlers.NewHandler(sess, st, cat, recorder, tiers, logger)
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewRouter(handler *handlers.Handler, logger *zap.Logger) *mux.Router {
	return api.SetupRouter(handler, logger)
}

// ------------------------------------------------------------------------------------------------------
func (c *Config) NewHTTPServer(router *mux.Router) *http.Server {
	return &http.Server{
		Addr:         ":" + c.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
