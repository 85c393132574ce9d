package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vasu1712/socialsync-backend/internal/api"
	"github.com/Vasu1712/socialsync-backend/internal/auth"
	"github.com/Vasu1712/socialsync-backend/internal/chat"
	"github.com/Vasu1712/socialsync-backend/internal/config"
	"github.com/Vasu1712/socialsync-backend/internal/logging"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/social"
	"github.com/Vasu1712/socialsync-backend/internal/storage"
	"github.com/Vasu1712/socialsync-backend/internal/storage/memory"
	mongostore "github.com/Vasu1712/socialsync-backend/internal/storage/mongo"
	valkeystore "github.com/Vasu1712/socialsync-backend/internal/storage/valkey"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

type stores struct {
	messages      storage.MessageStore
	notifications storage.NotificationStore
	users         storage.UserDirectory
	posts         storage.PostStore
	follows       storage.FollowStore
	lastSeen      storage.LastSeenStore
	// remember records identities seen in tokens when no user service backs
	// the directory.
	remember auth.ObserveFunc
	closers  []func(context.Context) error
}

func run() (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return exitConfig, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return exitConfig, err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		for _, c := range st.closers {
			if err := c(closeCtx); err != nil {
				logger.Warn("failed to close store", zap.Error(err))
			}
		}
	}()

	var verifier auth.Verifier = auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTTokenTTL)
	if st.remember != nil {
		verifier = auth.WithObserver(verifier, st.remember)
	}

	registry := ws.NewRegistry(logger.Named("presence"))
	notifier := chat.NewNotifier(st.notifications, st.users, registry, logger)
	chatService := chat.NewService(st.messages, st.users, st.lastSeen, registry, notifier, logger,
		chat.WithMaxTextLength(cfg.MaxMessageLength))
	socialService := social.NewService(st.posts, st.follows, st.users, notifier, logger)

	handler := api.NewRouter(api.Dependencies{
		Chat:     chatService,
		Social:   socialService,
		Verifier: verifier,
		Client: ws.ClientConfig{
			SendBuffer:     cfg.SendBufferSize,
			WriteWait:      cfg.WriteWait,
			PongWait:       cfg.PongWait,
			MaxMessageSize: cfg.MaxMessageSize,
		},
		StoreTimeout: cfg.StoreTimeout,
		Origins:      cfg.Origins(),
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", server.Addr), zap.String("storage", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return exitRuntime, fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("graceful shutdown: %w", err)
	}
	// Hijacked websocket connections are not tracked by Shutdown.
	for _, userID := range registry.ListOnline() {
		if h, ok := registry.Lookup(userID); ok {
			h.Close()
		}
	}
	return exitOK, nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		users := memory.NewUserDirectory()
		st.messages = memory.NewMessageStore()
		st.notifications = memory.NewNotificationStore()
		st.users = users
		st.posts = memory.NewPostStore()
		st.follows = memory.NewFollowStore()
		st.remember = func(id auth.Identity) {
			users.Put(models.UserRef{ID: id.UserID, Username: id.Username})
		}
		logger.Warn("using in-memory storage; data is lost on restart")

	case config.DriverMongo:
		db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Client().Disconnect)

		collections := mongostore.Collections{
			Messages:      cfg.MongoMessagesCollection,
			Notifications: cfg.MongoNotificationsCollection,
			Users:         cfg.MongoUsersCollection,
			Posts:         cfg.MongoPostsCollection,
			Follows:       cfg.MongoFollowsCollection,
		}
		if err := mongostore.EnsureIndexes(ctx, db, collections); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return nil, err
		}
		storeLogger := logger.Named("mongo")
		st.messages = mongostore.NewMessageStore(db, collections.Messages, storeLogger)
		st.notifications = mongostore.NewNotificationStore(db, collections.Notifications, storeLogger)
		st.users = mongostore.NewUserDirectory(db, collections.Users, storeLogger)
		st.posts = mongostore.NewPostStore(db, collections.Posts, storeLogger)
		st.follows = mongostore.NewFollowStore(db, collections.Follows, storeLogger)
	}

	if cfg.ValkeyAddr != "" {
		client, err := valkeystore.NewClient(cfg.ValkeyAddr)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error {
			client.Close()
			return nil
		})
		st.lastSeen = valkeystore.NewLastSeenStore(client, cfg.LastSeenTTL, logger.Named("valkey"))
	} else {
		st.lastSeen = memory.NewLastSeenStore()
	}
	return st, nil
}
