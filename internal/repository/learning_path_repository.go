package repository

import (
	"edupath_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) ListTemplates() ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) FindTemplateByID(id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.First(&path, id).Error
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// FindTemplateByCareerGoal 按职业目标匹配模板，无匹配时回退到任意一条
func (r *LearningPathRepository) FindTemplateByCareerGoal(goal string) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.Where("career_goal = ?", goal).First(&path).Error
	if err == gorm.ErrRecordNotFound {
		err = r.DB.Order("id ASC").First(&path).Error
	}
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (r *LearningPathRepository) FindPersonalizedByUser(userID uint) (*model.PersonalizedLearningPath, error) {
	var path model.PersonalizedLearningPath
	err := r.DB.Where("user_id = ?", userID).First(&path).Error
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (r *LearningPathRepository) ListPersonalizedByUser(userID uint) ([]model.PersonalizedLearningPath, error) {
	var paths []model.PersonalizedLearningPath
	err := r.DB.Where("user_id = ?", userID).Find(&paths).Error
	return paths, err
}

// SavePersonalized 每用户仅一行：存在则更新，不存在则插入
func (r *LearningPathRepository) SavePersonalized(path *model.PersonalizedLearningPath) error {
	var existing model.PersonalizedLearningPath
	err := r.DB.Where("user_id = ?", path.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(path).Error
	}
	if err != nil {
		return err
	}

	existing.LearningPathID = path.LearningPathID
	existing.Steps = path.Steps
	existing.CourseStructure = path.CourseStructure
	existing.ModuleDistribution = path.ModuleDistribution
	existing.RefreshedAt = path.RefreshedAt
	if err := r.DB.Save(&existing).Error; err != nil {
		return err
	}
	path.ID = existing.ID
	return nil
}

func (r *LearningPathRepository) CompleteStep(userID, pathID uint, stepIndex int) error {
	completion := &model.PathStepCompletion{
		UserID:      userID,
		PathID:      pathID,
		StepIndex:   stepIndex,
		CompletedAt: time.Now(),
	}
	return r.DB.Where("user_id = ? AND path_id = ? AND step_index = ?", userID, pathID, stepIndex).
		FirstOrCreate(completion).Error
}

func (r *LearningPathRepository) ListStepCompletions(userID, pathID uint) ([]model.PathStepCompletion, error) {
	var completions []model.PathStepCompletion
	err := r.DB.Where("user_id = ? AND path_id = ?", userID, pathID).
		Order("step_index ASC").Find(&completions).Error
	return completions, err
}
