package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authsvc "freebie/internal/app/services/auth"
	chatsvc "freebie/internal/app/services/chat"
	itemsvc "freebie/internal/app/services/items"
	domainuser "freebie/internal/domain/user"
	buskafka "freebie/internal/infra/bus/kafka"
	busmemory "freebie/internal/infra/bus/memory"
	"freebie/internal/infra/config"
	mongodb "freebie/internal/infra/db/mongo"
	"freebie/internal/infra/db/scylla"
	ginserver "freebie/internal/infra/http/gin"
	"freebie/internal/infra/obs"
	"freebie/internal/infra/security"
	"freebie/internal/infra/storage/memory"
	"freebie/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	ready := func() error { return nil }

	var (
		itemRepo itemsvc.Repository
		roomRepo chatsvc.RoomRepository
		userRepo authsvc.UserRepository
	)
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", "error", err)
			os.Exit(1)
		}
		itemRepo = mongodb.NewItemRepository(client.DB)
		roomRepo = mongodb.NewRoomRepository(client.DB)
		userRepo = mongodb.NewUserRepository(client.DB)
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("storage ready", "mode", "mongo", "database", cfg.MongoDB)
	default:
		itemRepo = memory.NewItemRepository()
		roomRepo = memory.NewRoomRepository()
		userRepo = memory.NewUserRepository()
		logger.Info("storage ready", "mode", "memory")
	}

	var messageLog chatsvc.MessageLog
	switch cfg.MessageStore {
	case "scylla":
		session, err := scylla.NewSession(cfg, logger)
		if err != nil {
			logger.Error("scylla connection failed", "error", err)
			os.Exit(1)
		}
		defer session.Close()
		messageLog = scylla.NewMessageLog(session)
		logger.Info("message store ready", "mode", "scylla", "keyspace", cfg.ScyllaKeyspace)
	default:
		messageLog = memory.NewMessageLog()
		logger.Info("message store ready", "mode", "memory")
	}

	var notifier chatsvc.Notifier
	switch cfg.BusMode {
	case "kafka":
		bus, err := buskafka.NewBus(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
		if err != nil {
			logger.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		go func() {
			if err := bus.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("kafka consumer stopped", "error", err)
			}
		}()
		notifier = bus
		logger.Info("room bus ready", "mode", "kafka", "topic", cfg.KafkaTopic)
	default:
		notifier = busmemory.NewBus()
		logger.Info("room bus ready", "mode", "memory")
	}

	var uploader itemsvc.Uploader
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL, logger)
		if err != nil {
			logger.Error("object storage setup failed", "error", err)
			os.Exit(1)
		}
		uploader = client
		logger.Info("object storage ready", "bucket", cfg.S3Bucket)
	}

	authService := &authsvc.Service{
		Users:      userRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	itemService := &itemsvc.Service{Repo: itemRepo, Uploader: uploader, Logger: logger}
	chatService := &chatsvc.Service{
		Rooms:    roomRepo,
		Messages: messageLog,
		Notifier: notifier,
		Logger:   logger,
	}

	cleanup := []func(ctx context.Context, id domainuser.ID) error{
		func(ctx context.Context, id domainuser.ID) error {
			return chatService.DeleteForUser(ctx, string(id))
		},
		func(ctx context.Context, id domainuser.ID) error {
			return itemService.DeleteByOwner(ctx, string(id))
		},
	}

	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Cleanup: cleanup, Logger: logger},
		Item:           ginserver.ItemHandler{Service: itemService, Logger: logger},
		Chat:           ginserver.ChatHandler{Chat: chatService, Items: itemService, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}
