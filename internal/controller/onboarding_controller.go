package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type OnboardingController struct {
	Service *service.OnboardingService
}

func NewOnboardingController(svc *service.OnboardingService) *OnboardingController {
	return &OnboardingController{Service: svc}
}

// @Summary 跳过入学测评
// @Description 已分配模块全部记为必修，标记引导完成并生成个性化路径
// @Tags 新手引导
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/onboarding/skip-assessment [post]
func (c *OnboardingController) SkipAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.SkipAssessment(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type SelectSubjectRequest struct {
	SubjectID uint `json:"subjectId" binding:"required"`
}

// @Summary 选择测评科目范围
// @Tags 新手引导
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SelectSubjectRequest true "科目信息"
// @Success 200 {object} util.Response
// @Router /api/onboarding/select-subject [post]
func (c *OnboardingController) SelectSubject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SelectSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SelectSubject(user.UserID, req.SubjectID); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "科目已选定")
}
