package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OnboardingService 新用户引导：选科目范围、跳过入学测评直达路径
type OnboardingService struct {
	UserRepo     *repository.UserRepository
	CourseRepo   *repository.CourseRepository
	ModuleStatus *ModuleStatusService
	LearningPath *LearningPathService
}

func NewOnboardingService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	moduleStatus *ModuleStatusService,
	learningPath *LearningPathService,
) *OnboardingService {
	return &OnboardingService{
		UserRepo:     userRepo,
		CourseRepo:   courseRepo,
		ModuleStatus: moduleStatus,
		LearningPath: learningPath,
	}
}

type SkipAssessmentResult struct {
	OnboardingComplete bool                            `json:"onboardingComplete"`
	LearningPath       *model.PersonalizedLearningPath `json:"learningPath,omitempty"`
}

// SkipAssessment 跳过入学测评：所有已分配模块直接记 0%/必修，
// 标记引导完成并确保个性化路径存在。路径生成失败不阻断引导完成
func (s *OnboardingService) SkipAssessment(userID uint) (*SkipAssessmentResult, error) {
	if err := s.ModuleStatus.SeedAssigned(userID); err != nil {
		return nil, err
	}

	if err := s.UserRepo.MarkOnboardingComplete(userID); err != nil {
		return nil, err
	}

	result := &SkipAssessmentResult{OnboardingComplete: true}

	path, err := s.LearningPath.EnsurePersonalizedPath(userID)
	if err != nil {
		logger.Log.Warn("跳过测评后生成个性化路径失败", zap.Uint("userId", userID), zap.Error(err))
		return result, nil
	}
	result.LearningPath = path
	return result, nil
}

// SelectSubject 设定测评的科目范围。后续 start 只下发该科目下的题目
func (s *OnboardingService) SelectSubject(userID, subjectID uint) error {
	if _, err := s.CourseRepo.FindSubjectByID(subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}

	return s.UserRepo.SetSelectedSubject(userID, &subjectID)
}
