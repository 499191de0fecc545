package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"edupath_backend/pkg/monitoring"
	"errors"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// PassThreshold 测评通过线（百分制）
	PassThreshold = 72
	// ModuleLockWrongAnswers 同一模块历史答错达到该次数即锁定
	ModuleLockWrongAnswers = 2
)

// AssessmentService 测评会话状态机：开始/恢复、进度保存、模块锁定与最终判分。
// finish 的收尾链路（模块状态重算、路径生成与刷新）为尽力而为，
// 失败只记日志，不影响测评结果的落库与返回
type AssessmentService struct {
	Repo         *repository.AssessmentRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
	ModuleStatus *ModuleStatusService
	LearningPath *LearningPathService
	LockCache    *LockedModuleCache
	Storage      *StorageService
}

func NewAssessmentService(
	repo *repository.AssessmentRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	moduleStatus *ModuleStatusService,
	learningPath *LearningPathService,
	lockCache *LockedModuleCache,
	storage *StorageService,
) *AssessmentService {
	return &AssessmentService{
		Repo:         repo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
		ModuleStatus: moduleStatus,
		LearningPath: learningPath,
		LockCache:    lockCache,
		Storage:      storage,
	}
}

// QuestionView 下发给前端的题目视图，不包含任何判分字段
type QuestionView struct {
	ID        uint         `json:"id"`
	ModuleID  uint         `json:"moduleId"`
	Type      string       `json:"type"`
	Prompt    string       `json:"prompt"`
	ImageURL  string       `json:"imageUrl,omitempty"`
	Points    int          `json:"points"`
	TimeLimit int          `json:"timeLimit"`
	Options   []OptionView `json:"options,omitempty"`
}

type OptionView struct {
	ID           uint   `json:"id"`
	Text         string `json:"text"`
	DisplayOrder int    `json:"displayOrder"`
}

// SavedResponse 会话中某一题序的已保存作答
type SavedResponse struct {
	QuestionID uint   `json:"questionId"`
	Answer     string `json:"answer"`
	Skipped    bool   `json:"skipped"`
}

type SessionView struct {
	SessionID       uint                  `json:"sessionId"`
	CurrentPosition int                   `json:"currentPosition"`
	Responses       map[int]SavedResponse `json:"responses"`
	Resumed         bool                  `json:"resumed"`
}

type StartAssessmentResult struct {
	AssessmentID  uint           `json:"assessmentId"`
	Questions     []QuestionView `json:"questions"`
	LockedModules []uint         `json:"lockedModules"`
	Session       SessionView    `json:"session"`
}

// StartWithSessionCheck 开始测评。存在进行中的会话时恢复该会话，
// 连同已保存的逐题作答一并返回；否则创建新测评与新会话。
// 两种情况下题目集合都会剔除已锁定模块
func (s *AssessmentService) StartWithSessionCheck(ctx context.Context, userID uint) (*StartAssessmentResult, error) {
	locked, err := s.LockedModules(ctx, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionSet(ctx, userID, locked)
	if err != nil {
		return nil, err
	}

	if session, err := s.Repo.FindInProgressSession(userID); err == nil {
		responses, err := s.Repo.ListSessionResponses(session.ID)
		if err != nil {
			return nil, err
		}

		saved := make(map[int]SavedResponse, len(responses))
		for _, r := range responses {
			saved[r.QIndex] = SavedResponse{
				QuestionID: r.QuestionID,
				Answer:     r.AnswerText,
				Skipped:    r.Skipped,
			}
		}

		return &StartAssessmentResult{
			AssessmentID:  session.AssessmentID,
			Questions:     questions,
			LockedModules: locked,
			Session: SessionView{
				SessionID:       session.ID,
				CurrentPosition: session.CurrentPosition,
				Responses:       saved,
				Resumed:         true,
			},
		}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	assessment := &model.Assessment{UserID: userID, StartedAt: time.Now()}
	if err := s.Repo.Create(assessment); err != nil {
		return nil, err
	}

	session := &model.AssessmentSession{
		AssessmentID: assessment.ID,
		UserID:       userID,
		Status:       model.SessionInProgress,
	}
	if err := s.Repo.CreateSession(session); err != nil {
		return nil, err
	}

	return &StartAssessmentResult{
		AssessmentID:  assessment.ID,
		Questions:     questions,
		LockedModules: locked,
		Session: SessionView{
			SessionID: session.ID,
			Responses: map[int]SavedResponse{},
		},
	}, nil
}

// LockedModules 返回用户当前被锁定的模块集合，优先读缓存
func (s *AssessmentService) LockedModules(ctx context.Context, userID uint) ([]uint, error) {
	if cached, ok := s.LockCache.Get(ctx, userID); ok {
		return cached, nil
	}

	wrongCounts, err := s.Repo.WrongCountByModule(userID)
	if err != nil {
		return nil, err
	}

	locked := make([]uint, 0)
	for moduleID, count := range wrongCounts {
		if count >= ModuleLockWrongAnswers {
			locked = append(locked, moduleID)
		}
	}

	s.LockCache.Set(ctx, userID, locked)
	return locked, nil
}

// questionSet 按用户选定的科目范围加载题目并解析图片外链
func (s *AssessmentService) questionSet(ctx context.Context, userID uint, lockedModules []uint) ([]QuestionView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListActive(
		[]string{model.QuestionTypeMCQ, model.QuestionTypeText},
		user.SelectedSubjectID,
		lockedModules,
	)
	if err != nil {
		return nil, err
	}

	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{
			ID:        q.ID,
			ModuleID:  q.ModuleID,
			Type:      q.Type,
			Prompt:    q.Prompt,
			Points:    q.Points,
			TimeLimit: q.TimeLimit,
		}

		if q.ImageKey != "" {
			url, err := s.Storage.ResolveURL(ctx, q.ImageKey)
			if err != nil {
				logger.Log.Warn("解析题目图片外链失败",
					zap.Uint("questionId", q.ID), zap.String("imageKey", q.ImageKey), zap.Error(err))
			} else {
				view.ImageURL = url
			}
		}

		for _, opt := range q.Options {
			view.Options = append(view.Options, OptionView{
				ID:           opt.ID,
				Text:         opt.Text,
				DisplayOrder: opt.DisplayOrder,
			})
		}

		views = append(views, view)
	}

	return views, nil
}

// SaveProgressRequest 会话进度保存请求
type SaveProgressRequest struct {
	SessionID       uint               `json:"sessionId" binding:"required"`
	CurrentPosition int                `json:"currentPosition"`
	Responses       []SaveProgressItem `json:"responses"`
}

type SaveProgressItem struct {
	QIndex     int    `json:"qIndex"`
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
	Skipped    bool   `json:"skipped"`
}

// SaveProgress 覆盖写会话内指定题序的作答并推进游标。幂等，可重复调用
func (s *AssessmentService) SaveProgress(userID uint, req *SaveProgressRequest) error {
	session, err := s.Repo.FindSessionByID(req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSessionNotFound
		}
		return err
	}
	if session.UserID != userID {
		return util.ErrPermissionDenied
	}
	if session.Status != model.SessionInProgress {
		return util.ErrSessionNotResumable
	}

	for _, item := range req.Responses {
		resp := &model.SessionResponse{
			SessionID:  session.ID,
			QIndex:     item.QIndex,
			QuestionID: item.QuestionID,
			AnswerText: item.Answer,
			Skipped:    item.Skipped,
		}
		if err := s.Repo.UpsertSessionResponse(resp); err != nil {
			return err
		}
	}

	return s.Repo.UpdateSessionPosition(session.ID, req.CurrentPosition)
}

// Abandon 放弃进行中的会话
func (s *AssessmentService) Abandon(userID, sessionID uint) error {
	session, err := s.Repo.FindSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSessionNotFound
		}
		return err
	}
	if session.UserID != userID {
		return util.ErrPermissionDenied
	}
	if session.Status != model.SessionInProgress {
		return util.ErrSessionNotResumable
	}

	return s.Repo.UpdateSessionStatus(session.ID, model.SessionAbandoned)
}

// EvaluateResponse 单题即时判分，不落库。用于前端的逐题反馈
func (s *AssessmentService) EvaluateResponse(questionID uint, answer string) (bool, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrQuestionNotFound
		}
		return false, err
	}
	return GradeAnswer(question, answer), nil
}

// FinishRequest 提交测评请求。Responses 按题序排列
type FinishRequest struct {
	AssessmentID uint         `json:"assessmentId" binding:"required"`
	Responses    []FinishItem `json:"responses" binding:"required"`
}

type FinishItem struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
	Skipped    bool   `json:"skipped"`
}

type FinishResult struct {
	AssessmentID  uint                           `json:"assessmentId"`
	Score         int                            `json:"score"`
	Passed        bool                           `json:"passed"`
	TotalAnswered int                            `json:"totalAnswered"`
	CorrectCount  int                            `json:"correctCount"`
	SkippedCount  int                            `json:"skippedCount"`
	LockedModules []uint                         `json:"lockedModules"`
	LearningPath  *model.PersonalizedLearningPath `json:"learningPath,omitempty"`
}

// Finish 提交并判分。模块锁定状态在本次提交内从左到右累积：
// 某模块先答错两题后，同模块更靠后的题会被强制按跳过处理。
// 跳过的题不计入分母。得分与通过状态先落库，
// 随后的模块状态重算和路径刷新失败时只记日志
func (s *AssessmentService) Finish(ctx context.Context, userID uint, req *FinishRequest) (*FinishResult, error) {
	if req.AssessmentID == 0 || len(req.Responses) == 0 {
		return nil, util.ErrNoResponses
	}

	assessment, err := s.Repo.FindByIDAndUser(req.AssessmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	if assessment.CompletedAt != nil {
		return nil, util.ErrAssessmentFinished
	}

	questionIDs := make([]uint, 0, len(req.Responses))
	for _, item := range req.Responses {
		questionIDs = append(questionIDs, item.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(questionIDs)
	if err != nil {
		return nil, err
	}
	questionsByID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		questionsByID[questions[i].ID] = &questions[i]
	}

	// 历史答错计数作为锁定累积的起点
	wrongCounts, err := s.Repo.WrongCountByModule(userID)
	if err != nil {
		return nil, err
	}

	var counted, correct, skipped int
	ledger := make([]model.AssessmentResponse, 0, len(req.Responses))

	for _, item := range req.Responses {
		question, ok := questionsByID[item.QuestionID]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}

		moduleLocked := wrongCounts[question.ModuleID] >= ModuleLockWrongAnswers
		isSkipped := item.Skipped || item.Answer == "" || moduleLocked

		entry := model.AssessmentResponse{
			AssessmentID: assessment.ID,
			UserID:       userID,
			QuestionID:   question.ID,
			ModuleID:     question.ModuleID,
			AnswerText:   item.Answer,
			Skipped:      isSkipped,
		}

		if isSkipped {
			skipped++
		} else {
			counted++
			if GradeAnswer(question, item.Answer) {
				entry.Correct = true
				correct++
			} else {
				wrongCounts[question.ModuleID]++
			}
		}

		ledger = append(ledger, entry)
	}

	score := 0
	if counted > 0 {
		score = int(math.Round(100 * float64(correct) / float64(counted)))
	}
	passed := score >= PassThreshold

	if err := s.Repo.CreateResponses(ledger); err != nil {
		return nil, err
	}

	completedAt := time.Now()
	if err := s.Repo.Complete(assessment.ID, score, passed, completedAt); err != nil {
		return nil, err
	}

	if session, err := s.Repo.FindSessionByAssessment(assessment.ID); err == nil &&
		session.Status == model.SessionInProgress {
		if err := s.Repo.UpdateSessionStatus(session.ID, model.SessionCompleted); err != nil {
			logger.Log.Warn("关闭测评会话失败", zap.Uint("sessionId", session.ID), zap.Error(err))
		}
	}

	s.LockCache.Invalidate(ctx, userID)
	monitoring.AssessmentFinished.WithLabelValues(strconv.FormatBool(passed)).Inc()

	locked := make([]uint, 0)
	for moduleID, count := range wrongCounts {
		if count >= ModuleLockWrongAnswers {
			locked = append(locked, moduleID)
		}
	}

	result := &FinishResult{
		AssessmentID:  assessment.ID,
		Score:         score,
		Passed:        passed,
		TotalAnswered: counted,
		CorrectCount:  correct,
		SkippedCount:  skipped,
		LockedModules: locked,
	}

	result.LearningPath = s.runFinishChain(userID)
	return result, nil
}

// runFinishChain 测评落库后的收尾：重算模块状态 → 确保个性化路径存在 →
// 刷新路径。每一步独立兜底，任何失败都不回滚已保存的测评结果
func (s *AssessmentService) runFinishChain(userID uint) *model.PersonalizedLearningPath {
	if _, err := s.ModuleStatus.Recalculate(userID); err != nil {
		logger.Log.Error("测评收尾：模块状态重算失败", zap.Uint("userId", userID), zap.Error(err))
	}

	if _, err := s.LearningPath.EnsurePersonalizedPath(userID); err != nil {
		logger.Log.Error("测评收尾：生成个性化路径失败", zap.Uint("userId", userID), zap.Error(err))
	}

	if err := s.LearningPath.RefreshUserLearningPaths(userID); err != nil {
		logger.Log.Error("测评收尾：刷新个性化路径失败", zap.Uint("userId", userID), zap.Error(err))
	}

	path, err := s.LearningPath.GetPersonalizedForUser(userID)
	if err != nil {
		logger.Log.Warn("测评收尾：读取个性化路径失败", zap.Uint("userId", userID), zap.Error(err))
		return nil
	}
	return path
}

type LatestAssessmentResult struct {
	Assessment *model.Assessment `json:"assessment"`
	InProgress bool              `json:"inProgress"`
}

// Latest 用户最近一次测评，并标注是否仍有进行中的会话
func (s *AssessmentService) Latest(userID uint) (*LatestAssessmentResult, error) {
	assessment, err := s.Repo.FindLatestByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	result := &LatestAssessmentResult{Assessment: assessment}
	if _, err := s.Repo.FindInProgressSession(userID); err == nil {
		result.InProgress = true
	}
	return result, nil
}
