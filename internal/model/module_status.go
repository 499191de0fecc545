package model

import "time"

const (
	ModuleStatusMandatory = "mandatory"
	ModuleStatusOptional  = "optional"
)

// ModuleStatusRecord 用户×模块的正确率台账。只覆盖写，从不删除
// swagger:model ModuleStatusRecord
type ModuleStatusRecord struct {
	BaseModel
	UserID                uint      `gorm:"index:idx_user_module,unique;not null" json:"userId"`
	ModuleID              uint      `gorm:"index:idx_user_module,unique;not null" json:"moduleId"`
	CorrectnessPercentage int       `gorm:"default:0" json:"correctnessPercentage"`
	Status                string    `gorm:"size:20;default:'mandatory'" json:"status"`
	LastCalculatedAt      time.Time `json:"lastCalculatedAt"`
}

func (ModuleStatusRecord) TableName() string {
	return "module_status_records"
}
