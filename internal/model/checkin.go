package model

import (
	"time"
)

// Checkin 学习签到记录，连续学习天数的日历来源
// swagger:model Checkin
type Checkin struct {
	BaseModel
	UserID    uint      `gorm:"index:idx_user_checkin_date,unique;not null" json:"userId"`
	CheckinAt time.Time `gorm:"not null;index:idx_user_checkin_date,unique" json:"checkinAt"`
}

func (Checkin) TableName() string {
	return "checkins"
}
