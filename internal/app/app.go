package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/controller"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/service"
	"startup_academy_backend/pkg/configwatcher"
	"startup_academy_backend/pkg/database"
	"startup_academy_backend/pkg/llm"
	"startup_academy_backend/pkg/logger"
	"startup_academy_backend/pkg/monitoring"
	"startup_academy_backend/pkg/security"
	"startup_academy_backend/pkg/tracing"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "startup-academy"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	AI              *llm.Holder
	services        *services
	tracer          *sdktrace.TracerProvider
	current         atomic.Pointer[config.Config]
	configDir       string
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	lesson      *repository.LessonRepository
	progress    *repository.ProgressRepository
	exercise    *repository.ExerciseRepository
	submission  *repository.SubmissionRepository
	achievement *repository.AchievementRepository
}

type services struct {
	storage         *service.StorageService
	achievement     *service.AchievementService
	progress        *service.ProgressService
	course          *service.CourseService
	exercise        *service.ExerciseService
	ai              *service.AIService
	coaching        *service.CoachingService
	evaluation      *service.EvaluationService
	socialListening *service.SocialListeningService
	dashboard       *service.DashboardService
	evaluator       *service.EvaluationWorker
}

type controllers struct {
	course      *controller.CourseController
	exercise    *controller.ExerciseController
	achievement *controller.AchievementController
	dashboard   *controller.DashboardController
	function    *controller.FunctionController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// CurrentConfig 热更新后的最新配置
func (a *App) CurrentConfig() *config.Config {
	return a.current.Load()
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		lesson:      repository.NewLessonRepository(db),
		progress:    repository.NewProgressRepository(db),
		exercise:    repository.NewExerciseRepository(db),
		submission:  repository.NewSubmissionRepository(db),
		achievement: repository.NewAchievementRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.achievement = service.NewAchievementService(repos.achievement)
	s.progress = service.NewProgressService(db, repos.user, repos.course, repos.lesson, repos.progress, s.achievement)
	s.course = service.NewCourseService(repos.course, repos.lesson, repos.exercise, s.progress, s.storage, rdb)
	s.dashboard = service.NewDashboardService(s.progress, repos.progress, repos.course, repos.achievement)

	s.ai = service.NewAIService(a.AI, cfg.AI.Timeout())
	s.coaching = service.NewCoachingService(s.ai, repos.exercise)
	s.evaluation = service.NewEvaluationService(s.ai, repos.submission, repos.exercise, repos.lesson, repos.course, s.progress)
	s.socialListening = service.NewSocialListeningService(s.ai)

	s.evaluator = service.NewEvaluationWorker(s.evaluation, repos.submission, cfg.Evaluation)
	s.evaluator.OnComplete = func(r service.EvaluationResult) {
		if r.Err == nil && r.Evaluation != nil {
			logger.Log.Info("Submission evaluated",
				zap.String("submissionID", r.SubmissionID),
				zap.Int("score", r.Evaluation.OverallScore))
		}
	}

	s.exercise = service.NewExerciseService(repos.exercise, repos.submission)
	s.exercise.Queue = s.evaluator

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		course:      controller.NewCourseController(s.course),
		exercise:    controller.NewExerciseController(s.exercise),
		achievement: controller.NewAchievementController(s.achievement),
		dashboard:   controller.NewDashboardController(s.dashboard, s.progress),
		function:    controller.NewFunctionController(s.coaching, s.evaluation, s.socialListening),
		health:      controller.NewHealthController(db, a.Redis, a.AI),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 评估队列与配置热更新
func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	if err := s.evaluator.Start(); err != nil {
		logger.Log.Error("Failed to start evaluation sweeper", zap.Error(err))
	}

	configFile := filepath.Join(a.configDir, "config.yaml")
	go func() {
		err := configwatcher.WatchConfig(ctx, configFile, func(cfg *config.Config) {
			cfg.ForceMigrate = a.Config.ForceMigrate
			cfg.MigrateOnly = a.Config.MigrateOnly
			a.current.Store(cfg)
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

// reloadAI AI 配置变化时重建 Provider，失败时保留原 Provider
func (a *App) reloadAI(cfg *config.Config) {
	provider, err := llm.NewProvider(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Error("Failed to rebuild AI provider, keeping previous one", zap.Error(err))
		return
	}
	a.AI.Set(provider)
	if provider == nil {
		logger.Log.Warn("AI provider offline, fallback responses enabled")
		return
	}
	logger.Log.Info("AI provider reloaded", zap.String("model", provider.ModelID()))
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		configDir: configDir,
	}
	app.current.Store(cfg)

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	provider, err := llm.NewProvider(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Error("Failed to initialize AI provider, running offline", zap.Error(err))
	}
	if provider == nil {
		logger.Log.Warn("No AI credential configured, AI features return fallback responses")
	}
	app.AI = llm.NewHolder(provider)
	app.RegisterConfigCallback(app.reloadAI)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(context.Background(), serviceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stopBackground := context.WithCancel(context.Background())
	a.startBackgroundTasks(ctx, a.services)

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// 停止配置监听，等待评估队列清空
	stopBackground()
	a.services.evaluator.Stop()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
