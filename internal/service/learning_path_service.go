package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// 完成路径步骤的固定XP奖励
const stepCompletionXP = 50

// LearningPathService 学习路径个性化：模板推荐、选课、
// 个性化副本的生成/合并/刷新与进度追踪
type LearningPathService struct {
	Repo       *repository.LearningPathRepository
	CourseRepo *repository.CourseRepository
	StatusRepo *repository.ModuleStatusRepository
	UserRepo   *repository.UserRepository
}

func NewLearningPathService(
	repo *repository.LearningPathRepository,
	courseRepo *repository.CourseRepository,
	statusRepo *repository.ModuleStatusRepository,
	userRepo *repository.UserRepository,
) *LearningPathService {
	return &LearningPathService{
		Repo:       repo,
		CourseRepo: courseRepo,
		StatusRepo: statusRepo,
		UserRepo:   userRepo,
	}
}

func (s *LearningPathService) ListTemplates() ([]model.LearningPath, error) {
	return s.Repo.ListTemplates()
}

func (s *LearningPathService) GetTemplate(id uint) (*model.LearningPath, error) {
	path, err := s.Repo.FindTemplateByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}
	return path, nil
}

// Recommend 按职业目标推荐模板路径
func (s *LearningPathService) Recommend(careerGoal string) (*model.LearningPath, error) {
	path, err := s.Repo.FindTemplateByCareerGoal(careerGoal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}
	return path, nil
}

// Enroll 选课后立即刷新个性化路径，让新课程的模块进入课程树
func (s *LearningPathService) Enroll(userID, courseID uint) error {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPathNotFound
		}
		return err
	}

	if err := s.CourseRepo.Enroll(userID, courseID); err != nil {
		return err
	}

	return s.RefreshUserLearningPaths(userID)
}

func (s *LearningPathService) GetPersonalizedForUser(userID uint) (*model.PersonalizedLearningPath, error) {
	path, err := s.Repo.FindPersonalizedByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}
	return path, nil
}

// EnsurePersonalizedPath 存在即返回，不存在则生成
func (s *LearningPathService) EnsurePersonalizedPath(userID uint) (*model.PersonalizedLearningPath, error) {
	path, err := s.Repo.FindPersonalizedByUser(userID)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.GeneratePersonalizedPath(userID)
}

// GeneratePersonalizedPath 从模板生成（或基于已有副本重建）用户的个性化路径。
// 课程树来自三路合并：已有副本中嵌入的模块、当前分配关系展开的模块，
// 新树某科目为空时回退保留旧树模块。合并结果按测评成绩个性化后
// 替换进模板中 course_structure 类型的步骤
func (s *LearningPathService) GeneratePersonalizedPath(userID uint) (*model.PersonalizedLearningPath, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	template, err := s.Repo.FindTemplateByCareerGoal(user.CareerGoal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}

	var priorStructure []model.CourseNode
	if prior, err := s.Repo.FindPersonalizedByUser(userID); err == nil {
		if err := json.Unmarshal(prior.CourseStructure, &priorStructure); err != nil {
			priorStructure = nil
		}
	}

	return s.rebuildPersonalized(userID, template, priorStructure)
}

// RefreshUserLearningPaths 重建用户全部个性化路径。
// 没有任何副本时等同于首次生成
func (s *LearningPathService) RefreshUserLearningPaths(userID uint) error {
	paths, err := s.Repo.ListPersonalizedByUser(userID)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		_, err := s.GeneratePersonalizedPath(userID)
		return err
	}

	for _, existing := range paths {
		template, err := s.Repo.FindTemplateByID(existing.LearningPathID)
		if err != nil {
			return err
		}

		var priorStructure []model.CourseNode
		if err := json.Unmarshal(existing.CourseStructure, &priorStructure); err != nil {
			priorStructure = nil
		}

		if _, err := s.rebuildPersonalized(userID, template, priorStructure); err != nil {
			return err
		}
	}

	return nil
}

func (s *LearningPathService) rebuildPersonalized(
	userID uint,
	template *model.LearningPath,
	priorStructure []model.CourseNode,
) (*model.PersonalizedLearningPath, error) {
	courses, err := s.CourseRepo.ListEnrolledCourses(userID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.CourseRepo.AssignedModuleIDs(userID)
	if err != nil {
		return nil, err
	}

	scores, err := s.StatusRepo.ScoreMapByUser(userID)
	if err != nil {
		return nil, err
	}

	merged := MergeCourseStructures(priorStructure, BuildCourseStructure(courses))
	personalized := PersonalizeCourseStructure(merged, assigned, scores)

	steps, err := substituteCourseStructure(template.Steps, personalized)
	if err != nil {
		return nil, err
	}

	structureJSON, err := json.Marshal(personalized)
	if err != nil {
		return nil, err
	}

	distJSON, err := json.Marshal(DistributionStats(personalized))
	if err != nil {
		return nil, err
	}

	path := &model.PersonalizedLearningPath{
		UserID:             userID,
		LearningPathID:     template.ID,
		Steps:              steps,
		CourseStructure:    structureJSON,
		ModuleDistribution: distJSON,
		RefreshedAt:        time.Now(),
	}

	if err := s.Repo.SavePersonalized(path); err != nil {
		return nil, err
	}

	monitoring.PathRefreshes.Inc()
	return path, nil
}

// substituteCourseStructure 把个性化课程树替换进模板步骤。
// 只有 resource.type == "course_structure" 的步骤被替换，
// 其余步骤（含资源形状不符的）原样保留
func substituteCourseStructure(templateSteps json.RawMessage, structure []model.CourseNode) (json.RawMessage, error) {
	var steps []model.PathStep
	if len(templateSteps) > 0 {
		if err := json.Unmarshal(templateSteps, &steps); err != nil {
			return nil, err
		}
	}

	for i, step := range steps {
		if len(step.Resource) == 0 {
			continue
		}

		var resource model.StepResource
		if err := json.Unmarshal(step.Resource, &resource); err != nil {
			continue
		}
		if resource.Type != "course_structure" {
			continue
		}

		resource.CourseStructure = structure
		raw, err := json.Marshal(resource)
		if err != nil {
			return nil, err
		}
		steps[i].Resource = raw
	}

	return json.Marshal(steps)
}

// ModuleStatuses 用户的模块状态台账
func (s *LearningPathService) ModuleStatuses(userID uint) ([]model.ModuleStatusRecord, error) {
	return s.StatusRepo.ListByUser(userID)
}

// PathInsights 个性化路径的分布统计与进度概览
type PathInsights struct {
	Distribution model.ModuleDistribution `json:"distribution"`
	Progress     PathProgress             `json:"progress"`
	RefreshedAt  time.Time                `json:"refreshedAt"`
}

func (s *LearningPathService) Insights(userID uint) (*PathInsights, error) {
	path, err := s.GetPersonalizedForUser(userID)
	if err != nil {
		return nil, err
	}

	var dist model.ModuleDistribution
	if len(path.ModuleDistribution) > 0 {
		if err := json.Unmarshal(path.ModuleDistribution, &dist); err != nil {
			return nil, err
		}
	}

	progress, err := s.Progress(userID)
	if err != nil {
		return nil, err
	}

	return &PathInsights{
		Distribution: dist,
		Progress:     *progress,
		RefreshedAt:  path.RefreshedAt,
	}, nil
}

type CompleteStepResult struct {
	StepIndex int `json:"stepIndex"`
	XPAwarded int `json:"xpAwarded"`
}

// CompleteStep 标记路径步骤完成并发放固定XP。重复完成幂等且不重复发放
func (s *LearningPathService) CompleteStep(userID uint, stepIndex int) (*CompleteStepResult, error) {
	path, err := s.GetPersonalizedForUser(userID)
	if err != nil {
		return nil, err
	}

	var steps []model.PathStep
	if len(path.Steps) > 0 {
		if err := json.Unmarshal(path.Steps, &steps); err != nil {
			return nil, err
		}
	}
	if stepIndex < 0 || stepIndex >= len(steps) {
		return nil, util.ErrPathNotFound
	}

	existing, err := s.Repo.ListStepCompletions(userID, path.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.StepIndex == stepIndex {
			return &CompleteStepResult{StepIndex: stepIndex}, nil
		}
	}

	if err := s.Repo.CompleteStep(userID, path.ID, stepIndex); err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateXP(userID, stepCompletionXP); err != nil {
		return nil, err
	}

	return &CompleteStepResult{StepIndex: stepIndex, XPAwarded: stepCompletionXP}, nil
}

type PathProgress struct {
	CompletedSteps int `json:"completedSteps"`
	TotalSteps     int `json:"totalSteps"`
	Percent        int `json:"percent"`
}

func (s *LearningPathService) Progress(userID uint) (*PathProgress, error) {
	path, err := s.GetPersonalizedForUser(userID)
	if err != nil {
		return nil, err
	}

	var steps []model.PathStep
	if len(path.Steps) > 0 {
		if err := json.Unmarshal(path.Steps, &steps); err != nil {
			return nil, err
		}
	}

	completions, err := s.Repo.ListStepCompletions(userID, path.ID)
	if err != nil {
		return nil, err
	}

	progress := &PathProgress{
		CompletedSteps: len(completions),
		TotalSteps:     len(steps),
	}
	if progress.TotalSteps > 0 {
		progress.Percent = int(math.Round(100 * float64(progress.CompletedSteps) / float64(progress.TotalSteps)))
	}
	return progress, nil
}
