package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nhannv/vikonews/internal/config"
	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/internal/service"
	"github.com/nhannv/vikonews/internal/service/extractor"
	"github.com/nhannv/vikonews/internal/service/translator"
	"github.com/nhannv/vikonews/internal/service/wordpress"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Store     *service.Store
	Crawler   *service.CrawlerService
	Enrich    *service.EnrichService
	Publisher *service.PublisherService
	Scheduler *service.Scheduler
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	store := service.NewStore(db, logger)

	llm, err := translator.NewClient(context.Background(), cfg.Translator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translator: %w", err)
	}

	fetcher := extractor.NewFetcher(cfg.Crawler.RequestTimeoutDuration(), cfg.Crawler.UserAgent, logger)
	extractors := extractor.Registry(fetcher, cfg.Crawler.DetailDelayDuration(), cfg.Crawler.Location(), logger)

	enrich := service.NewEnrichService(store, llm, cfg.Translator, logger)
	crawler := service.NewCrawlerService(extractors, store, enrich, cfg.Crawler, logger)
	cms := wordpress.NewClient(cfg.WordPress, logger)
	publisher := service.NewPublisherService(store, cms, cfg.WordPress, logger)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, crawler)

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:    cfg,
		DB:        db,
		Router:    router,
		Logger:    logger,
		Store:     store,
		Crawler:   crawler,
		Enrich:    enrich,
		Publisher: publisher,
		Scheduler: scheduler,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		crawler := api.Group("/crawler")
		{
			crawler.POST("/run", s.handleRunCrawler)
			crawler.GET("/runs", s.handleListRuns)
			crawler.GET("/sources", s.handleListSources)
		}

		articles := api.Group("/articles")
		{
			articles.GET("", s.handleListArticles)
			articles.GET("/:id", s.handleGetArticle)
			articles.POST("/translate", s.handleTranslateBatch)
			articles.PATCH("/:id/select", s.handleSetSelected)
			articles.PATCH("/:id/topnews", s.handleSetTopNews)
			articles.PATCH("/:id/cardnews", s.handleSetCardNews)
			articles.PATCH("/:id/category", s.handleSetCategory)
			articles.POST("/:id/publish", s.handlePublish)
			articles.DELETE("/:id", s.handleDelete)
		}
	}
}

func (s *Server) handleRunCrawler(c *gin.Context) {
	source := c.Query("source")

	result, err := s.Crawler.Crawl(c.Request.Context(), source)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown source") {
			status = http.StatusBadRequest
		}
		s.Logger.Error("Crawl run failed", zap.Error(err))
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	runs, total, err := s.Store.ListRuns(c.Request.Context(), page, size)
	if err != nil {
		s.Logger.Error("Failed to list runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": total})
}

func (s *Server) handleListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.Crawler.Sources()})
}

func (s *Server) handleListArticles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	filter := service.ArticleFilter{
		Status:   models.ArticleStatus(c.Query("status")),
		Category: models.Category(c.Query("category")),
		Source:   c.Query("source"),
		Page:     page,
		Size:     size,
	}
	if raw := c.Query("selected"); raw != "" {
		selected := raw == "true"
		filter.Selected = &selected
	}

	articles, total, err := s.Store.ListArticles(c.Request.Context(), filter)
	if err != nil {
		s.Logger.Error("Failed to list articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": total})
}

func (s *Server) handleGetArticle(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	article, err := s.Store.GetArticle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (s *Server) handleTranslateBatch(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := s.Enrich.TranslateBatch(c.Request.Context(), req.IDs)
	if err != nil {
		s.Logger.Error("Batch translation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSetSelected(c *gin.Context) {
	s.handleFlag(c, func(ctx context.Context, id uint, on bool) error {
		return s.Store.SetSelected(ctx, id, on)
	})
}

func (s *Server) handleSetCardNews(c *gin.Context) {
	s.handleFlag(c, func(ctx context.Context, id uint, on bool) error {
		return s.Store.SetCardNews(ctx, id, on)
	})
}

func (s *Server) handleSetTopNews(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	var req struct {
		Value bool `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := s.Store.SetTopNews(c.Request.Context(), id, req.Value); err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "cap") {
			status = http.StatusConflict
		} else if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleSetCategory(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := s.Store.SetCategory(c.Request.Context(), id, req.Category); err != nil {
		s.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handlePublish(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	var req struct {
		Target string `json:"target"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.Target == "" {
		req.Target = string(service.TargetMain)
	}

	result, err := s.Publisher.Publish(c.Request.Context(), id, service.PublishTarget(req.Target))
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown publish target") {
			status = http.StatusBadRequest
		} else if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		} else if strings.Contains(err.Error(), "archived") {
			status = http.StatusConflict
		}
		s.Logger.Error("Publish failed", zap.Uint("id", id), zap.Error(err))
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	if err := s.Publisher.Delete(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleFlag(c *gin.Context, apply func(ctx context.Context, id uint, on bool) error) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	var req struct {
		Value bool `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := apply(c.Request.Context(), id, req.Value); err != nil {
		s.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) articleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid article id"})
		return 0, false
	}
	return uint(id), true
}

func (s *Server) respondStoreError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if strings.Contains(err.Error(), "not found") {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	s.Scheduler.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
