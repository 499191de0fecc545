package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModuleStatusRepository struct {
	DB *gorm.DB
}

func NewModuleStatusRepository(db *gorm.DB) *ModuleStatusRepository {
	return &ModuleStatusRepository{DB: db}
}

// UpsertAll 按 (user_id, module_id) 合并写入。台账只覆盖，从不删除旧条目
func (r *ModuleStatusRepository) UpsertAll(records []model.ModuleStatusRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"correctness_percentage", "status", "last_calculated_at", "updated_at",
		}),
	}).Create(&records).Error
}

func (r *ModuleStatusRepository) ListByUser(userID uint) ([]model.ModuleStatusRecord, error) {
	var records []model.ModuleStatusRecord
	err := r.DB.Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

// ScoreMapByUser 返回 moduleID → 正确率 的映射，供个性化器消费
func (r *ModuleStatusRepository) ScoreMapByUser(userID uint) (map[uint]int, error) {
	records, err := r.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	scores := make(map[uint]int, len(records))
	for _, rec := range records {
		scores[rec.ModuleID] = rec.CorrectnessPercentage
	}
	return scores, nil
}
