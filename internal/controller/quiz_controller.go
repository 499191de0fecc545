package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizGenerationService
}

func NewQuizController(svc *service.QuizGenerationService) *QuizController {
	return &QuizController{Service: svc}
}

// @Summary 教师端：为模块生成测评题
// @Description 循环调用出题服务直到对端结束或达到数量上限
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GenerateQuizRequest true "生成参数"
// @Success 201 {object} util.Response
// @Router /api/teacher/questions/generate [post]
func (c *QuizController) Generate(ctx *gin.Context) {
	var req service.GenerateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.GenerateForModule(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, result)
}
