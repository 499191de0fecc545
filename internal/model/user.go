package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name               string    `gorm:"size:100;not null" json:"name"`
	Email              string    `gorm:"size:100;unique;not null" json:"email"`
	Password           string    `gorm:"size:100;not null" json:"-"`
	Role               UserRole  `gorm:"size:20;default:'student'" json:"role"`
	XP                 int       `gorm:"default:0" json:"xp"` // 总经验值，等级与冻结额度由此推导
	CareerGoal         string    `gorm:"size:100" json:"careerGoal"`
	SelectedSubjectID  *uint     `gorm:"index" json:"selectedSubjectId"` // 测评题目范围限定的科目
	OnboardingComplete bool      `gorm:"default:false" json:"onboardingComplete"`
	Language           string    `gorm:"size:10;default:'en'" json:"language"`
	Avatar             string    `gorm:"size:255" json:"avatar"`
	Disabled           bool      `gorm:"default:false" json:"disabled"`
	LastLogin          time.Time `json:"lastLogin"`
	LastSeen           time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
