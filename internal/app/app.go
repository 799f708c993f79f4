package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"garmentscore/internal/cache"
	"garmentscore/internal/config"
	"garmentscore/internal/logger"
	"garmentscore/internal/repository"
	"garmentscore/internal/service"
)

// App holds connections, stores and services shared by the binaries
type App struct {
	Config *config.Config
	Log    *logger.Logger

	Mongo *mongo.Client
	Redis *redis.Client

	CatalogRepo    repository.CatalogRepo
	AssessmentRepo repository.AssessmentRepo
	ReportRepo     repository.ReportRepo

	CatalogCache    cache.CatalogCache
	ReportCache     cache.ReportCache
	ScoreboardCache cache.ScoreboardCache
	ApprovalCache   cache.ApprovalCache

	AuthService       *service.AuthService
	CatalogService    *service.CatalogService
	NarrativeService  *service.NarrativeService
	AssessmentService *service.AssessmentService
	ReportService     *service.ReportService
}

// New connects to MongoDB and Redis and wires every service
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	a.Mongo = mongoClient

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	a.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := a.Redis.Ping(pingCtx).Err(); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to Redis", "addr", cfg.RedisAddr)

	db := mongoClient.Database(cfg.MongoDatabase)

	// Repositories
	a.CatalogRepo = repository.NewCatalogRepo(db)
	a.AssessmentRepo = repository.NewAssessmentRepo(db)
	a.ReportRepo = repository.NewReportRepo(db)

	// Caches
	a.CatalogCache = cache.NewCatalogCache(a.Redis, cfg.CatalogCacheTTL)
	a.ReportCache = cache.NewReportCache(a.Redis, cfg.ReportCacheTTL)
	a.ScoreboardCache = cache.NewScoreboardCache(a.Redis)
	a.ApprovalCache = cache.NewApprovalCache(a.Redis)

	// Services
	a.AuthService = service.NewAuthService(cfg, a.ApprovalCache)
	a.CatalogService = service.NewCatalogService(a.CatalogRepo, a.CatalogCache, log)
	a.NarrativeService = service.NewNarrativeService(cfg.AI, log)
	a.AssessmentService = service.NewAssessmentService(
		a.CatalogService,
		a.AssessmentRepo,
		a.ReportRepo,
		a.ReportCache,
		a.ScoreboardCache,
		a.NarrativeService,
		log,
	)
	a.ReportService = service.NewReportService(a.AssessmentService, a.ReportRepo, a.ReportCache, a.ScoreboardCache)

	return a, nil
}

// Close releases the connections
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Log.Warn("mongo disconnect failed", "error", err)
		}
	}
}
