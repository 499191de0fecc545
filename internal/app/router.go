package app

import (
	"edupath_backend/docs"
	"edupath_backend/internal/config"
	"edupath_backend/internal/middleware"
	"edupath_backend/internal/model"
	"edupath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/users/profile", c.auth.GetProfile)
	rg.PUT("/users/profile", c.auth.UpdateProfile)

	// 新手引导
	onboarding := rg.Group("/onboarding")
	{
		onboarding.POST("/skip-assessment", c.onboarding.SkipAssessment)
		onboarding.POST("/select-subject", c.onboarding.SelectSubject)
	}

	// 测评
	assessments := rg.Group("/assessments")
	{
		assessments.POST("/start", c.assessment.Start)
		assessments.POST("/finish", c.assessment.Finish)
		assessments.POST("/evaluate", c.assessment.Evaluate)
		assessments.GET("/latest", c.assessment.Latest)
		assessments.GET("/locked-modules", c.assessment.LockedModules)
		assessments.PUT("/sessions/progress", c.assessment.SaveProgress)
		assessments.POST("/sessions/:id/abandon", c.assessment.Abandon)
	}

	// 学习路径
	paths := rg.Group("/learning-paths")
	{
		paths.GET("", c.learningPath.ListTemplates)
		paths.GET("/recommend", c.learningPath.Recommend)
		paths.GET("/my-path", c.learningPath.MyPath)
		paths.POST("/refresh", c.learningPath.Refresh)
		paths.POST("/enroll", c.learningPath.Enroll)
		paths.GET("/module-status", c.learningPath.ModuleStatus)
		paths.GET("/insights", c.learningPath.Insights)
		paths.POST("/complete-step", c.learningPath.CompleteStep)
		paths.GET("/progress", c.learningPath.Progress)
		paths.GET("/:id", c.learningPath.GetTemplate)
	}

	// 成就与签到
	rg.GET("/achievements", c.achievement.GetAchievements)
	rg.GET("/achievements/leaderboard", c.achievement.Leaderboard)
	rg.POST("/checkin", c.achievement.Checkin)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/questions/generate", c.quiz.Generate)
	}
}
