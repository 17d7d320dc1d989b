package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/skillbridge-app/skillbridge-api/api/swagger"
	"github.com/skillbridge-app/skillbridge-api/internal/handler"
	"github.com/skillbridge-app/skillbridge-api/internal/middleware"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/internal/repository"
	"github.com/skillbridge-app/skillbridge-api/internal/service"
	"github.com/skillbridge-app/skillbridge-api/internal/session"
	"github.com/skillbridge-app/skillbridge-api/pkg/cache"
	"github.com/skillbridge-app/skillbridge-api/pkg/config"
	"github.com/skillbridge-app/skillbridge-api/pkg/database"
	"github.com/skillbridge-app/skillbridge-api/pkg/gemini"
	"github.com/skillbridge-app/skillbridge-api/pkg/jobs"
	"github.com/skillbridge-app/skillbridge-api/pkg/logger"
	corsmiddleware "github.com/skillbridge-app/skillbridge-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skillbridge-app/skillbridge-api/pkg/middleware/requestid"
	"github.com/skillbridge-app/skillbridge-api/pkg/storage"
)

// @title SkillBridge API
// @version 1.0.0
// @description Marketplace connecting students with employers
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheService = service.NewCacheService(nil, metrics, 5*time.Minute, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metrics, 5*time.Minute, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	reportRepo := repository.NewReportRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	authService := service.NewAuthService(userRepo, profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "skillbridge-api",
	})

	sessions := session.NewStore(profileRepo, cfg.Session, logr)
	sessions.Subscribe(func(s session.Session) {
		logr.Debug("session changed",
			zap.String("user_id", s.UserID),
			zap.Bool("profile_loaded", s.Profile != nil))
	})

	profileService := service.NewProfileService(profileRepo, validate, logr)
	companyService := service.NewCompanyService(companyRepo, validate, logr)
	opportunityService := service.NewOpportunityService(opportunityRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, cacheService, validate, logr)
	applicationService := service.NewApplicationService(applicationRepo, opportunityRepo, profileRepo, validate, logr)
	progressService := service.NewProgressService(progressRepo, courseRepo, cfg.AI.QuizPassScore, validate, logr)
	homeService := service.NewHomeService(opportunityRepo, progressRepo, profileRepo, cacheService, cfg.HomeFeed, logr)
	searchService := service.NewSearchService(searchRepo, cacheService, metrics, cfg.Search, logr)

	store, err := storage.NewBucketStorage(cfg.Storage.BaseDir, cfg.PublicURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init bucket storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	storageService := service.NewStorageService(store, signer, profileService, companyService, cfg.Storage.MaxFileSizeBytes, logr)

	reportSigner := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportService := service.NewReportService(reportRepo, applicationRepo, store, reportSigner, validate, logr)
	if cfg.Reports.Enabled {
		reportQueue := jobs.NewQueue("reports", reportService.Process, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportService.AttachQueue(reportQueue)
		reportQueue.Start(ctx)
		defer reportQueue.Stop()

		go reportCleanupLoop(ctx, store, cfg.Reports, logr)
	}

	var aiService *service.AIService
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		geminiClient, aiErr := gemini.New(ctx, cfg.AI)
		if aiErr != nil {
			logr.Sugar().Warnw("gemini client init failed, ai endpoints disabled", "error", aiErr)
			aiService = service.NewAIService(nil, applicationRepo, profileRepo, opportunityRepo, validate, logr)
		} else {
			defer geminiClient.Close() //nolint:errcheck
			aiService = service.NewAIService(geminiClient, applicationRepo, profileRepo, opportunityRepo, validate, logr)
		}
	} else {
		aiService = service.NewAIService(nil, applicationRepo, profileRepo, opportunityRepo, validate, logr)
	}

	authHandler := handler.NewAuthHandler(authService, sessions, logr)
	searchHandler := handler.NewSearchHandler(searchService)
	profileHandler := handler.NewProfileHandler(profileService)
	companyHandler := handler.NewCompanyHandler(companyService)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService, profileService)
	courseHandler := handler.NewCourseHandler(courseService)
	applicationHandler := handler.NewApplicationHandler(applicationService, profileService)
	progressHandler := handler.NewProgressHandler(progressService)
	homeHandler := handler.NewHomeHandler(homeService)
	storageHandler := handler.NewStorageHandler(storageService, profileService)
	aiHandler := handler.NewAIHandler(aiService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public buckets are served directly; private ones only via signed tokens.
	for _, bucket := range []string{storage.BucketAvatars, storage.BucketCompanyLogos, storage.BucketCourseThumbnails} {
		r.Static("/files/"+bucket, filepath.Join(cfg.Storage.BaseDir, bucket))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	api.GET("/search", middleware.OptionalJWT(authService), searchHandler.Search)
	api.GET("/search/suggestions", searchHandler.Suggestions)

	courses := api.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)

		instructorOnly := courses.Group("", middleware.JWT(authService), middleware.RequireRoles(models.RoleEmployer, models.RoleAdmin))
		instructorOnly.POST("", courseHandler.Create)
		instructorOnly.PUT("/:id", courseHandler.Update)
		instructorOnly.DELETE("/:id", courseHandler.Delete)
		instructorOnly.POST("/:id/chapters", courseHandler.AddChapter)
		instructorOnly.POST("/:id/quiz", courseHandler.AddQuizQuestion)
	}

	opportunities := api.Group("/opportunities")
	{
		opportunities.GET("", opportunityHandler.List)
		opportunities.GET("/:id", opportunityHandler.Get)

		employerOnly := opportunities.Group("", middleware.JWT(authService), middleware.RequireRoles(models.RoleEmployer))
		employerOnly.POST("", opportunityHandler.Create)
		employerOnly.PUT("/:id", opportunityHandler.Update)
		employerOnly.DELETE("/:id", opportunityHandler.Delete)
	}

	companies := api.Group("/companies")
	{
		companies.GET("", companyHandler.List)
		companies.GET("/:id", companyHandler.Get)

		employerOnly := companies.Group("", middleware.JWT(authService), middleware.RequireRoles(models.RoleEmployer, models.RoleAdmin))
		employerOnly.POST("", companyHandler.Create)
		employerOnly.PUT("/:id", companyHandler.Update)
	}

	profiles := api.Group("/profiles", middleware.JWT(authService))
	{
		profiles.GET("", profileHandler.List)
		profiles.GET("/:id", profileHandler.Get)
		profiles.PUT("/:id", middleware.RBAC("SELF", string(models.RoleAdmin)), profileHandler.Update)
	}

	applications := api.Group("/applications", middleware.JWT(authService))
	{
		applications.GET("", applicationHandler.List)
		applications.POST("", middleware.RequireRoles(models.RoleStudent), applicationHandler.Apply)
		applications.PATCH("/:id/status", middleware.RequireRoles(models.RoleEmployer), applicationHandler.UpdateStatus)
		applications.DELETE("/:id", middleware.RequireRoles(models.RoleStudent), applicationHandler.Withdraw)
	}

	progress := api.Group("/progress", middleware.JWT(authService), middleware.RequireRoles(models.RoleStudent))
	{
		progress.GET("", progressHandler.List)
		progress.GET("/:courseId", progressHandler.Get)
		progress.POST("/:courseId/modules", progressHandler.CompleteModule)
		progress.POST("/:courseId/quiz", progressHandler.SubmitQuiz)
	}

	api.GET("/home", middleware.JWT(authService), homeHandler.Feed)

	reports := api.Group("/reports", middleware.JWT(authService), middleware.RequireRoles(models.RoleEmployer, models.RoleAdmin))
	{
		reports.POST("", reportHandler.Create)
		reports.GET("/:id", reportHandler.Get)
	}

	ai := api.Group("/ai", middleware.JWT(authService), middleware.RequireRoles(models.RoleEmployer, models.RoleAdmin))
	{
		ai.POST("/generate-course", aiHandler.GenerateCourse)
		ai.GET("/applications/:id/compatibility", aiHandler.AnalyzeCompatibility)
	}

	files := api.Group("/storage", middleware.JWT(authService))
	{
		files.POST("/avatar", storageHandler.UploadAvatar)
		files.POST("/resume", middleware.RequireRoles(models.RoleStudent), storageHandler.UploadResume)
		files.GET("/resume", middleware.RequireRoles(models.RoleStudent), storageHandler.ResumeURL)
		files.POST("/companies/:id/logo", middleware.RequireRoles(models.RoleEmployer), storageHandler.UploadCompanyLogo)
		files.POST("/courses/:id/thumbnail", middleware.RequireRoles(models.RoleEmployer, models.RoleAdmin), storageHandler.UploadCourseThumbnail)
	}
	api.GET("/storage/download", storageHandler.Download)

	api.GET("/admin/metrics", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped")
}

// reportCleanupLoop removes expired report files on a fixed interval.
func reportCleanupLoop(ctx context.Context, store *storage.BucketStorage, cfg config.ReportsConfig, logr *zap.Logger) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupOlderThan(storage.BucketReports, cfg.SignedURLTTL)
			if err != nil {
				logr.Sugar().Warnw("report cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("expired reports removed", "count", len(deleted))
			}
		}
	}
}
