package service

import (
	"bytes"
	"context"
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizGenerationService 调用出题服务为模块批量生成测评题。
// 服务端按会话逐题返回，stop 为真或达到配置上限时结束
type QuizGenerationService struct {
	Config       *config.GenerationConfig
	QuestionRepo *repository.QuestionRepository
	CourseRepo   *repository.CourseRepository
	HTTPClient   *http.Client
}

func NewQuizGenerationService(
	cfg *config.GenerationConfig,
	questionRepo *repository.QuestionRepository,
	courseRepo *repository.CourseRepository,
) *QuizGenerationService {
	return &QuizGenerationService{
		Config:       cfg,
		QuestionRepo: questionRepo,
		CourseRepo:   courseRepo,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// generationRequest 出题服务的单轮请求体
type generationRequest struct {
	MainTopic           string              `json:"main_topic"`
	TopicHierarchy      []string            `json:"topic_hierarchy"`
	StudentLevel        string              `json:"student_level"`
	QuestionNumber      int                 `json:"question_number"`
	TargetLen           int                 `json:"target_len"`
	ConversationHistory []generationMessage `json:"conversation_history"`
}

type generationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generationResponse struct {
	Stop     bool               `json:"stop"`
	Question *generatedQuestion `json:"question,omitempty"`
}

type generatedQuestion struct {
	Type          string            `json:"type"`
	Prompt        string            `json:"prompt"`
	Options       []generatedOption `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Points        int               `json:"points"`
}

type generatedOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// GenerateQuizRequest 为指定模块生成题目的请求
type GenerateQuizRequest struct {
	ModuleID     uint   `json:"moduleId" binding:"required"`
	StudentLevel string `json:"studentLevel"`
	TargetCount  int    `json:"targetCount"`
}

type GenerateQuizResult struct {
	ModuleID  uint             `json:"moduleId"`
	Generated int              `json:"generated"`
	Questions []model.Question `json:"questions"`
}

// GenerateForModule 循环请求出题服务直到对端返回 stop 或达到数量上限，
// 生成的题目落库并默认启用
func (s *QuizGenerationService) GenerateForModule(ctx context.Context, req *GenerateQuizRequest) (*GenerateQuizResult, error) {
	modules, err := s.CourseRepo.FindModulesByIDs([]uint{req.ModuleID})
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, util.ErrModuleNotFound
	}
	module := modules[0]

	subject, err := s.CourseRepo.FindSubjectByID(module.SubjectID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hierarchy := []string{module.Title}
	if subject != nil {
		hierarchy = []string{subject.Title, module.Title}
	}

	level := req.StudentLevel
	if level == "" {
		level = "beginner"
	}

	target := req.TargetCount
	if target <= 0 || target > s.Config.MaxQuestions {
		target = s.Config.MaxQuestions
	}

	var history []generationMessage
	var questions []model.Question

	for number := 1; number <= target; number++ {
		payload := generationRequest{
			MainTopic:           module.Title,
			TopicHierarchy:      hierarchy,
			StudentLevel:        level,
			QuestionNumber:      number,
			TargetLen:           target,
			ConversationHistory: history,
		}

		resp, err := s.requestQuestion(ctx, &payload)
		if err != nil {
			// 已生成的部分保留，循环中断不是整体失败
			logger.Log.Warn("出题服务调用失败，提前结束",
				zap.Uint("moduleId", module.ID), zap.Int("questionNumber", number), zap.Error(err))
			break
		}

		if resp.Stop || resp.Question == nil {
			break
		}

		question := buildQuestion(module.ID, resp.Question)
		questions = append(questions, question)

		raw, _ := json.Marshal(resp.Question)
		history = append(history, generationMessage{Role: "assistant", Content: string(raw)})
	}

	if err := s.QuestionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}

	return &GenerateQuizResult{
		ModuleID:  module.ID,
		Generated: len(questions),
		Questions: questions,
	}, nil
}

func (s *QuizGenerationService) requestQuestion(ctx context.Context, payload *generationRequest) (*generationResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.Config.BaseURL+"/v1/questions/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.Config.APIKey)

	httpResp, err := s.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation service returned status %d", httpResp.StatusCode)
	}

	var resp generationResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func buildQuestion(moduleID uint, gen *generatedQuestion) model.Question {
	points := gen.Points
	if points <= 0 {
		points = 1
	}

	question := model.Question{
		ModuleID: moduleID,
		Type:     gen.Type,
		Prompt:   gen.Prompt,
		Points:   points,
		IsActive: true,
	}

	if gen.Type == model.QuestionTypeMCQ {
		for i, opt := range gen.Options {
			question.Options = append(question.Options, model.QuestionOption{
				Text:         opt.Text,
				IsCorrect:    opt.Correct,
				DisplayOrder: i,
			})
		}
	} else {
		question.CorrectAnswer = gen.CorrectAnswer
	}

	return question
}
