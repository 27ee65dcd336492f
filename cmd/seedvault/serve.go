package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/seedvault/adapters/events"
	"github.com/layer-3/seedvault/adapters/siwe"
	"github.com/layer-3/seedvault/adapters/store"
	"github.com/layer-3/seedvault/adapters/tokenizer"
	"github.com/layer-3/seedvault/adapters/worldid"
	"github.com/layer-3/seedvault/config"
	"github.com/layer-3/seedvault/ports"
	"github.com/layer-3/seedvault/service"
	transport "github.com/layer-3/seedvault/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

type stores struct {
	nonces    ports.NonceStore
	limiter   ports.RateLimiter
	directory ports.Directory
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	tok, err := newTokenizer(cfg, logger)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.StoreBackend == config.BackendRedis || cfg.EventsBackend == config.BackendRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach Redis: %w", err)
		}
	}

	st := newStores(cfg, redisClient)

	eventPub, closePub, err := newEventPublisher(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closePub()

	proofs := worldid.NewClient(cfg.WorldAPIURL, cfg.WorldAppID, cfg.WorldAction, nil)
	wallets := siwe.NewVerifier(time.Now)

	identityService := service.NewIdentityService(tok, st.nonces, st.directory, proofs, wallets, eventPub, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gatewayCfg := transport.DefaultGatewayConfig()
	gatewayCfg.FailOpen = cfg.RateFailOpen
	router := transport.SetupRouter(identityService, tok, st.limiter, gatewayCfg, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreBackend),
			zap.String("events", cfg.EventsBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func newTokenizer(cfg *config.Config, logger *zap.Logger) (*tokenizer.JWTTokenizer, error) {
	tok, err := tokenizer.NewJWTTokenizer(cfg.JWTSecret, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	if tok.UsesDevelopmentSecret() {
		logger.Warn("JWT_SECRET is not set, signing tokens with the development secret")
	}
	return tok, nil
}

func newStores(cfg *config.Config, client *redis.Client) stores {
	limit := store.WithLimit(cfg.RateLimit, cfg.RateWindow)

	if cfg.StoreBackend == config.BackendRedis {
		return stores{
			nonces:    store.NewRedisNonceStore(client),
			limiter:   store.NewRedisRateLimiter(client, limit),
			directory: store.NewRedisDirectory(client),
		}
	}
	return stores{
		nonces:    store.NewMemoryNonceStore(),
		limiter:   store.NewMemoryRateLimiter(limit),
		directory: store.NewMemoryDirectory(),
	}
}

func newEventPublisher(cfg *config.Config, client *redis.Client) (ports.EventPublisher, func(), error) {
	if cfg.EventsBackend != config.BackendRedis {
		return events.NopPublisher{}, func() {}, nil
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: client,
		},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}
	return events.NewWatermillPublisher(publisher), func() { _ = publisher.Close() }, nil
}
