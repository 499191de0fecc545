package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// @Summary 开始或恢复测评
// @Description 存在进行中的会话时恢复会话并返回已保存的作答，否则创建新测评
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/assessments/start [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.StartWithSessionCheck(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 保存测评会话进度
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.SaveProgressRequest true "进度信息"
// @Success 200 {object} util.Response
// @Router /api/assessments/sessions/progress [put]
func (c *AssessmentController) SaveProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SaveProgress(user.UserID, &req); err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrSessionNotResumable):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, "进度已保存")
}

// @Summary 放弃测评会话
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/sessions/{id}/abandon [post]
func (c *AssessmentController) Abandon(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.Abandon(user.UserID, id); err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrSessionNotResumable):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, "已放弃")
}

type EvaluateRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

// @Summary 单题即时判分
// @Description 判定作答正误但不落库，用于逐题反馈
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EvaluateRequest true "作答信息"
// @Success 200 {object} util.Response
// @Router /api/assessments/evaluate [post]
func (c *AssessmentController) Evaluate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	correct, err := c.Service.EvaluateResponse(req.QuestionID, req.Answer)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"correct": correct})
}

// @Summary 提交测评
// @Description 判分、落库并触发模块状态重算与路径刷新
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.FinishRequest true "全部作答"
// @Success 200 {object} util.Response
// @Router /api/assessments/finish [post]
func (c *AssessmentController) Finish(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.FinishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Finish(ctx.Request.Context(), user.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoResponses), errors.Is(err, util.ErrAssessmentFinished):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrAssessmentNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary 最近一次测评
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/assessments/latest [get]
func (c *AssessmentController) Latest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.Latest(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 当前锁定的模块
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/assessments/locked-modules [get]
func (c *AssessmentController) LockedModules(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	locked, err := c.Service.LockedModules(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"lockedModules": locked})
}
