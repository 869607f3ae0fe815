package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"cvstudio/internal/api"
	"cvstudio/internal/config"
	"cvstudio/internal/database"
	"cvstudio/internal/phototransform"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
	"cvstudio/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready")

	if err := db.AutoMigrate(&database.Document{}, &database.Export{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Printf("database migrated")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	renderer, err := render.New(logger)
	if err != nil {
		log.Fatalf("init renderer: %v", err)
	}

	store := prefs.NewRedisStore(redisClient, "cvstudio:prefs")
	personalizer, err := prefs.NewPersonalizer(store, logger)
	if err != nil {
		log.Fatalf("init personalizer: %v", err)
	}

	// No face detector is wired in this deployment; center-on-face
	// degrades to "no face found".
	engine := phototransform.NewEngine(store, nil, cfg.Photo.ViewportWidth, cfg.Photo.ViewportHeight, logger)

	studio, err := api.NewStudio(context.Background(), db, renderer, store, logger)
	if err != nil {
		log.Fatalf("init studio: %v", err)
	}

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s", address)

	router := api.NewRouter(logger)
	api.RegisterRoutes(
		router,
		db,
		asynqClient,
		redisClient,
		logger,
		storageClient,
		studio,
		renderer,
		personalizer,
		store,
		engine,
		cfg.Clamd.Address,
	)

	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
