package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"quickai-backend/internal/ai"
	googleauth "quickai-backend/internal/auth"
	"quickai-backend/internal/creations"
	"quickai-backend/internal/entitlements"
	"quickai-backend/internal/events"
	"quickai-backend/internal/gen"
	"quickai-backend/internal/gen/openai"
	"quickai-backend/internal/imaging"
	"quickai-backend/internal/shared/config"
	"quickai-backend/internal/shared/server"
	"quickai-backend/internal/shared/storage/db"
	"quickai-backend/internal/shared/storage/object"
	localstore "quickai-backend/internal/shared/storage/object/local"
	s3store "quickai-backend/internal/shared/storage/object/s3"
	"quickai-backend/internal/shared/telemetry"
	"quickai-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.ObjectStore
	Events events.Client

	Entitlements     entitlements.Store
	CreationsRepo    creations.Repo
	UsersRepo        users.Repo
	CreationsService *creations.Service
	UsersService     *users.Service
	Gen              gen.Gateway
	Imaging          *imaging.Client

	AIHandler        *ai.Handler
	CreationsHandler *creations.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  buildRedis(cfg),
		Store:  store,
		Events: buildEvents(ctx, cfg),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Entitlements:     app.Entitlements,
		AIHandler:        app.AIHandler,
		CreationsHandler: app.CreationsHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRedis(cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("bootstrap: invalid REDIS_URL, feed cache disabled: %v", err)
		return nil
	}
	return redis.NewClient(opts)
}

func buildEvents(ctx context.Context, cfg config.Config) events.Client {
	if strings.TrimSpace(cfg.EventQueueURL) == "" {
		return events.Noop{}
	}
	client, err := events.NewSQSClient(ctx, cfg.AWSRegion, cfg.EventQueueURL)
	if err != nil {
		telemetry.Warn("bootstrap.events_disabled", map[string]any{"error": err.Error()})
		return events.Noop{}
	}
	return client
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var creationsRepo creations.Repo
	var usersRepo users.Repo
	var ents entitlements.Store

	if app.DB != nil {
		creationsRepo = &creations.PGRepo{DB: app.DB}
		usersRepo = &users.PGRepo{DB: app.DB}
		ents = entitlements.NewPGStore(app.DB)
	} else {
		creationsRepo = creations.NewMemoryRepo()
		usersRepo = users.NewMemoryRepo()
		ents = entitlements.NewMemoryStore()
	}

	var gateway gen.Gateway = gen.Placeholder{}
	if client, err := openai.NewClient(app.Config.AIBaseURL, app.Config.AIAPIKey, app.Config.AIModel, app.Config.AIImageModel); err != nil {
		if !isDevLike(app.Config.Env) {
			return err
		}
		log.Printf("bootstrap: generation backend not configured: %v", err)
	} else {
		gateway = client
	}

	var imagingClient *imaging.Client
	if strings.TrimSpace(app.Config.ImagingBaseURL) != "" {
		client, err := imaging.NewClient(app.Config.ImagingBaseURL, app.Config.ImagingAPIKey)
		if err != nil {
			return err
		}
		imagingClient = client
	} else if !isDevLike(app.Config.Env) {
		return fmt.Errorf("IMAGING_BASE_URL is required")
	}

	creationsSvc := &creations.Service{
		Repo:   creationsRepo,
		Ents:   ents,
		Events: app.Events,
		Feed:   creations.NewFeedCache(app.Redis),
	}
	usersSvc := users.NewService(usersRepo)

	app.Entitlements = ents
	app.CreationsRepo = creationsRepo
	app.UsersRepo = usersRepo
	app.CreationsService = creationsSvc
	app.UsersService = usersSvc
	app.Gen = gateway
	app.Imaging = imagingClient

	app.AIHandler = ai.NewHandler(creationsSvc, gateway, imagingClient, app.Store, app.Config.PublicBaseURL)
	app.CreationsHandler = creations.NewHandler(creationsSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		usersSvc,
		ents,
	)

	return nil
}
