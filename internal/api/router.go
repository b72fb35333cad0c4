package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steemit/topics/internal/api/topics"
	"github.com/steemit/topics/internal/cache"
	"github.com/steemit/topics/internal/db"
	"github.com/steemit/topics/internal/listing"
	"github.com/steemit/topics/pkg/config"
	"github.com/steemit/topics/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	cfg     config.ListingConfig
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg config.ListingConfig) *Router {
	router := &Router{
		handler: NewJSONRPCHandler(),
		db:      database,
		cache:   redisCache,
		cfg:     cfg,
		logger:  logging.WithComponent("api-router"),
	}

	// Register all API methods
	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	repo := db.NewRepository(r.db.DB)

	service := listing.NewService(
		listing.NewDefaultResolver(db.NewSettingsRepository(repo)),
		listing.NewPager(r.db.DB),
		db.NewGroupRepository(repo),
		nil,
	)
	topicsAPI := topics.NewAPI(repo, service, r.cache, r.cfg)

	r.handler.RegisterMethod("topics.get_group_topics", topicsAPI.GetGroupTopics)
	r.handler.RegisterMethod("topics.get_home_topics", topicsAPI.GetHomeTopics)
	r.handler.RegisterMethod("topics.record_visit", topicsAPI.RecordVisit)
	r.handler.RegisterMethod("topics.get_default_settings", topicsAPI.GetDefaultSettings)

	r.logger.Info("Registered JSON-RPC methods", zap.Int("count", len(r.handler.methods)))
}

// healthHandler reports the database and, when enabled, cache health
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":   "OK",
		"service":  "topics-api",
		"database": "OK",
	}

	if err := r.db.Health(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "ERROR"
		body["database"] = err.Error()
	}

	if r.cache != nil {
		body["cache"] = "OK"
		if err := r.cache.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "ERROR"
			body["cache"] = err.Error()
		}
	}

	c.JSON(status, body)
}
