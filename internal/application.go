package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/rest"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-hotseat/web"
)

const shutdownTimeout = 10 * time.Second

var (
	ErrAddrNotFound       = errors.New("redis address string is empty")
	ErrUnknownStorageType = errors.New("unknown storage driver")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessionRepo, closeStorage, err := initSessionRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	sessionManager := usecase.NewSessionManager(logger, sessionRepo, conf.Game.PlayerXName, conf.Game.PlayerOName)
	wsServer := websocket.New(logger, sessionManager)
	router := rest.NewRouter(logger, sessionManager, wsServer, web.Static())
	httpServer := rest.New(logger, conf.HTTPPort, router)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		if httpErr := httpServer.Start(); httpErr != nil {
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", "error", err)
	}

	if err = wsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to close WebSocket connections", "error", err)
	}

	return nil
}

// initSessionRepository - picks the session store from the storage driver.
func initSessionRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	log := logger.With("component", "app")

	switch conf.Storage.Driver {
	case config.StorageMemory:
		log.Info("using in-memory session storage")

		return repository.NewMemorySessionRepository(), func() {}, nil
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("using redis session storage", "addr", redisAddrString)

		closeStorage := func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		return repository.NewSessionRepository(redisStorage, conf.Game.SessionTTL), closeStorage, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorageType, conf.Storage.Driver)
	}
}
