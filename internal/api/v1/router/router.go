package router

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vouchy/internal/api/v1/handler"
	"vouchy/internal/config"
	"vouchy/internal/llm"
	"vouchy/internal/metrics"
	"vouchy/internal/middleware"
	"vouchy/internal/model"
	"vouchy/internal/pubsub"
	"vouchy/internal/ratelimit"
	"vouchy/internal/repository"
	"vouchy/internal/service"
	"vouchy/internal/storage"
	"vouchy/internal/util"

	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// functionsPrefix keeps the paths the web client already calls working.
const functionsPrefix = "/functions/v1"

// New opens the database, wires every dependency and returns the root handler
// together with a cleanup func that releases them.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	h, closers, err := build(ctx, cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	cleanup := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to release resource")
			}
		}
		db.Close()
	}
	return h, cleanup, nil
}

// databaseDSN adjusts the configured connection string for the environment.
func databaseDSN(cfg *config.Config) string {
	dsn := cfg.DBConnectionString
	// Local Postgres usually runs without TLS.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		dsn = appendDSNParam(dsn, "sslmode=disable")
	}
	// Supabase's transaction pooler does not support server-side prepared statements.
	if cfg.Environment != "development" && !strings.Contains(dsn, "default_query_exec_mode") {
		dsn = appendDSNParam(dsn, "default_query_exec_mode=simple_protocol")
	}
	return dsn
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func appendDSNParam(dsn, param string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + param
		}
		return dsn + "?" + param
	}
	return dsn + " " + param
}

func build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, db *sql.DB) (http.Handler, []io.Closer, error) {
	var closers []io.Closer
	validate := validator.New(validator.WithRequiredStructEnabled())

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.UploadRateLimit, cfg.UploadRateWindow)
	if cfg.RedisURL != "" {
		rl, err := ratelimit.NewRedisLimiter(cfg.RedisURL, cfg.UploadRateLimit, cfg.UploadRateWindow)
		if err != nil {
			return nil, nil, err
		}
		limiter = rl
		closers = append(closers, rl)
		logger.Info().Msg("Using Redis rate limiter")
	}

	var supabaseStorage storage.Presigner
	if cfg.SupabaseStorageConfigured() {
		p, err := storage.NewSupabaseStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		supabaseStorage = p
	} else {
		logger.Warn().Msg("Supabase storage is not configured; signed-upload will fail")
	}

	var r2Storage storage.Presigner
	if cfg.R2Configured() {
		p, err := storage.NewR2Storage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		r2Storage = p
	} else {
		logger.Warn().Msg("R2 is not configured; r2-upload will fail")
	}

	var llmClient llm.Client
	if cfg.AIConfigured() {
		llmClient = llm.NewOpenAIClient(llm.Config{
			BaseURL: cfg.AIGatewayURL,
			APIKey:  cfg.AIGatewayAPIKey,
			Model:   cfg.AIModel,
		}, logger)
	} else {
		logger.Warn().Msg("AI gateway is not configured; ai-features will fail")
	}

	var publisher pubsub.Publisher = pubsub.NopPublisher{}
	if cfg.PubSubConfigured() {
		p, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		publisher = p
		closers = append(closers, p)
	}

	spaceRepo := repository.NewSpaceRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	usageRepo := repository.NewAIUsageRepo(db)

	uploadSvc := service.NewUploadService(spaceRepo, limiter, supabaseStorage, validate, cfg.SupabaseURL, cfg.SignedUploadBuckets, cfg.SignedUploadTTL, logger)
	r2Svc := service.NewR2Service(r2Storage, cfg.R2Bucket, cfg.R2PublicURL, cfg.R2AllowedFolders, cfg.R2UploadTTL, logger)
	aiSvc := service.NewAIService(llmClient, profileRepo, usageRepo, service.AILimits{
		model.PlanFree:   cfg.AIMonthlyLimitFree,
		model.PlanPro:    cfg.AIMonthlyLimitPro,
		model.PlanAgency: -1,
	}, logger)
	webhookSvc := service.NewWebhookService(cfg.DodoWebhookSecret, cfg.DodoProductPlans, profileRepo, publisher, cfg.PubSubPlanTopic, logger)

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	mux := http.NewServeMux()
	handler.NewUploadHandler(uploadSvc, cfg.TrustedProxyHops, logger).
		RegisterRoutes(mux, metrics.Instrument, "/signed-upload", functionsPrefix+"/signed-upload")
	handler.NewR2Handler(r2Svc, validate, logger).
		RegisterRoutes(mux, metrics.Instrument, authMiddleware, "/r2-upload", functionsPrefix+"/r2-upload")
	handler.NewAIHandler(aiSvc, logger).
		RegisterRoutes(mux, metrics.Instrument, authMiddleware, "/ai-features", functionsPrefix+"/ai-features")
	handler.NewWebhookHandler(webhookSvc, logger).
		RegisterRoutes(mux, metrics.Instrument, "/dodo-webhook", functionsPrefix+"/dodo-webhook")

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			util.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		util.WriteError(w, http.StatusNotFound, "Not found")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), closers, nil
}
