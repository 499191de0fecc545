package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	Service *service.LearningPathService
}

func NewLearningPathController(svc *service.LearningPathService) *LearningPathController {
	return &LearningPathController{Service: svc}
}

// @Summary 获取模板路径列表
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-paths [get]
func (c *LearningPathController) ListTemplates(ctx *gin.Context) {
	paths, err := c.Service.ListTemplates()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

// @Summary 获取模板路径详情
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Param id path int true "路径ID"
// @Success 200 {object} util.Response
// @Router /api/learning-paths/{id} [get]
func (c *LearningPathController) GetTemplate(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	path, err := c.Service.GetTemplate(id)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, path)
}

// @Summary 按职业目标推荐路径
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Param careerGoal query string true "职业目标"
// @Success 200 {object} util.Response
// @Router /api/learning-paths/recommend [get]
func (c *LearningPathController) Recommend(ctx *gin.Context) {
	goal := ctx.Query("careerGoal")
	if goal == "" {
		util.BadRequest(ctx, "careerGoal is required")
		return
	}

	path, err := c.Service.Recommend(goal)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, path)
}

type EnrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// @Summary 选课
// @Description 选课后立即刷新个性化路径
// @Tags 学习路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EnrollRequest true "课程信息"
// @Success 200 {object} util.Response
// @Router /api/learning-paths/enroll [post]
func (c *LearningPathController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.Enroll(user.UserID, req.CourseID); err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "选课成功")
}

// @Summary 我的个性化路径
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-paths/my-path [get]
func (c *LearningPathController) MyPath(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	path, err := c.Service.EnsurePersonalizedPath(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, path)
}

// @Summary 刷新个性化路径
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-paths/refresh [post]
func (c *LearningPathController) Refresh(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.RefreshUserLearningPaths(user.UserID); err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	path, err := c.Service.GetPersonalizedForUser(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, path)
}

// @Summary 模块状态台账
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-paths/module-status [get]
func (c *LearningPathController) ModuleStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.Service.ModuleStatuses(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}

// @Summary 路径统计洞察
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-paths/insights [get]
func (c *LearningPathController) Insights(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	insights, err := c.Service.Insights(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, insights)
}

type CompleteStepRequest struct {
	StepIndex int `json:"stepIndex"`
}

// @Summary 完成路径步骤
// @Description 标记步骤完成并发放XP，重复完成不重复发放
// @Tags 学习路径
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CompleteStepRequest true "步骤信息"
// @Success 200 {object} util.Response
// @Router /api/learning-paths/complete-step [post]
func (c *LearningPathController) CompleteStep(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.CompleteStep(user.UserID, req.StepIndex)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 路径进度
// @Tags 学习路径
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/learning-paths/progress [get]
func (c *LearningPathController) Progress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Service.Progress(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}
