package app

import (
	"context"
	"edupath_backend/internal/config"
	"edupath_backend/internal/controller"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/service"
	"edupath_backend/pkg/database"
	"edupath_backend/pkg/logger"
	"edupath_backend/pkg/monitoring"
	"edupath_backend/pkg/security"
	"edupath_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	checkin      *repository.CheckinRepository
	course       *repository.CourseRepository
	question     *repository.QuestionRepository
	assessment   *repository.AssessmentRepository
	moduleStatus *repository.ModuleStatusRepository
	learningPath *repository.LearningPathRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	gamification *service.GamificationService
	moduleStatus *service.ModuleStatusService
	learningPath *service.LearningPathService
	assessment   *service.AssessmentService
	onboarding   *service.OnboardingService
	quiz         *service.QuizGenerationService
}

type controllers struct {
	auth         *controller.AuthController
	assessment   *controller.AssessmentController
	learningPath *controller.LearningPathController
	onboarding   *controller.OnboardingController
	achievement  *controller.AchievementController
	quiz         *controller.QuizController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) ConfigCallbacks() []func(*config.Config) {
	return a.configCallbacks
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		checkin:      repository.NewCheckinRepository(db),
		course:       repository.NewCourseRepository(db),
		question:     repository.NewQuestionRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		moduleStatus: repository.NewModuleStatusRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.gamification = service.NewGamificationService(repos.user, repos.checkin)
	s.moduleStatus = service.NewModuleStatusService(repos.moduleStatus, repos.assessment, repos.course)
	s.learningPath = service.NewLearningPathService(repos.learningPath, repos.course, repos.moduleStatus, repos.user)

	lockCache := service.NewLockedModuleCache(rdb)
	s.assessment = service.NewAssessmentService(
		repos.assessment,
		repos.question,
		repos.user,
		s.moduleStatus,
		s.learningPath,
		lockCache,
		s.storage,
	)

	s.onboarding = service.NewOnboardingService(repos.user, repos.course, s.moduleStatus, s.learningPath)
	s.quiz = service.NewQuizGenerationService(&cfg.Generation, repos.question, repos.course)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		assessment:   controller.NewAssessmentController(s.assessment),
		learningPath: controller.NewLearningPathController(s.learningPath),
		onboarding:   controller.NewOnboardingController(s.onboarding),
		achievement:  controller.NewAchievementController(s.gamification),
		quiz:         controller.NewQuizController(s.quiz),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 6000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edupath-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

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

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
