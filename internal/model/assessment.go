package model

import "time"

const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// Assessment 一次测评的最终记录。完成后不可变
// swagger:model Assessment
type Assessment struct {
	BaseModel
	UserID      uint       `gorm:"index;not null" json:"userId"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Score       int        `gorm:"default:0" json:"score"` // 0-100
	Passed      bool       `gorm:"default:false" json:"passed"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// AssessmentSession 进行中测评的可恢复状态
// swagger:model AssessmentSession
type AssessmentSession struct {
	BaseModel
	AssessmentID    uint   `gorm:"index;not null" json:"assessmentId"`
	UserID          uint   `gorm:"index;not null" json:"userId"`
	CurrentPosition int    `gorm:"default:0" json:"currentPosition"`
	Status          string `gorm:"size:20;default:'in_progress';index" json:"status"`
}

func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

// SessionResponse 会话内按题序暂存的作答，按 (session, q_index) 覆盖写
type SessionResponse struct {
	BaseModel
	SessionID  uint   `gorm:"index:idx_session_qindex,unique;not null" json:"sessionId"`
	QIndex     int    `gorm:"index:idx_session_qindex,unique;not null" json:"qIndex"`
	QuestionID uint   `gorm:"index" json:"questionId"`
	AnswerText string `gorm:"type:text" json:"answerText"`
	Skipped    bool   `gorm:"default:false" json:"skipped"`
}

func (SessionResponse) TableName() string {
	return "session_responses"
}

// AssessmentResponse 已完成测评的逐题台账，不可变，供模块状态统计使用
type AssessmentResponse struct {
	BaseModel
	AssessmentID uint   `gorm:"index;not null" json:"assessmentId"`
	UserID       uint   `gorm:"index;not null" json:"userId"`
	QuestionID   uint   `gorm:"index;not null" json:"questionId"`
	ModuleID     uint   `gorm:"index;not null" json:"moduleId"`
	AnswerText   string `gorm:"type:text" json:"answerText"`
	Skipped      bool   `gorm:"default:false" json:"skipped"`
	Correct      bool   `gorm:"default:false" json:"correct"`
}

func (AssessmentResponse) TableName() string {
	return "assessment_responses"
}
