package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateBatch(qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Create(&qs).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

// ListActive 加载指定题型的全部启用题目；subjectID 非空时限定科目范围，
// excludedModules 中模块的题目被剔除（模块锁定）
func (r *QuestionRepository) ListActive(types []string, subjectID *uint, excludedModules []uint) ([]model.Question, error) {
	query := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Where("questions.is_active = ? AND questions.type IN ?", true, types)

	if subjectID != nil {
		query = query.Joins("JOIN modules ON modules.id = questions.module_id").
			Where("modules.subject_id = ?", *subjectID)
	}
	if len(excludedModules) > 0 {
		query = query.Where("questions.module_id NOT IN ?", excludedModules)
	}

	var qs []model.Question
	err := query.Order("questions.module_id ASC, questions.id ASC").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) CountByModule(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("module_id = ? AND is_active = ?", moduleID, true).Count(&count).Error
	return count, err
}
