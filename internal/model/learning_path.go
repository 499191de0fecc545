package model

import (
	"encoding/json"
	"time"
)

// LearningPath 职业目标模板路径，所有用户共享
// swagger:model LearningPath
type LearningPath struct {
	BaseModel
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	CareerGoal  string          `gorm:"size:100;index" json:"careerGoal"`
	Steps       json.RawMessage `gorm:"type:json" json:"steps"` // PathStep 数组
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

// PathStep 模板路径中的一步。Resource 为空或形状不符时退化为扁平 is_required 标记
type PathStep struct {
	Title      string          `json:"title"`
	Type       string          `json:"type"`
	IsRequired bool            `json:"is_required"`
	Resource   json.RawMessage `json:"resource,omitempty"`
}

// StepResource 步骤资源。Type == "course_structure" 的步骤会被替换为个性化课程树
type StepResource struct {
	Type            string       `json:"type"`
	CourseStructure []CourseNode `json:"course_structure,omitempty"`
}

// PersonalizedLearningPath 用户级物化副本，每用户仅一行，按需重建/合并
// swagger:model PersonalizedLearningPath
type PersonalizedLearningPath struct {
	BaseModel
	UserID             uint            `gorm:"uniqueIndex;not null" json:"userId"`
	LearningPathID     uint            `gorm:"index;not null" json:"learningPathId"`
	Steps              json.RawMessage `gorm:"type:json" json:"steps"`
	CourseStructure    json.RawMessage `gorm:"type:json" json:"courseStructure"`
	ModuleDistribution json.RawMessage `gorm:"type:json" json:"moduleDistribution"`
	RefreshedAt        time.Time       `json:"refreshedAt"`
}

func (PersonalizedLearningPath) TableName() string {
	return "personalized_learning_paths"
}

// PathStepCompletion 个性化路径中步骤的完成记录
type PathStepCompletion struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_step_user_path,unique" json:"userId"`
	PathID      uint      `gorm:"index:idx_step_user_path,unique" json:"pathId"`
	StepIndex   int       `gorm:"index:idx_step_user_path,unique" json:"stepIndex"`
	CompletedAt time.Time `json:"completedAt"`
}

func (PathStepCompletion) TableName() string {
	return "path_step_completions"
}

// CourseNode / SubjectNode / ModuleLeaf 构成个性化课程树。
// 树是值语义的：个性化变换总是产出新树，绝不原地修改
type CourseNode struct {
	CourseID uint          `json:"course_id"`
	Title    string        `json:"title"`
	Subjects []SubjectNode `json:"subjects"`
}

type SubjectNode struct {
	SubjectID uint         `json:"subject_id"`
	Title     string       `json:"title"`
	Modules   []ModuleLeaf `json:"modules"`
}

type ModuleLeaf struct {
	ModuleID         uint              `json:"module_id"`
	Title            string            `json:"title"`
	IsMandatory      bool              `json:"is_mandatory"`
	Status           string            `json:"status"`
	AssessmentScore  *int              `json:"assessment_score,omitempty"`
	IsAssigned       bool              `json:"is_assigned"`
	UserModuleStatus *UserModuleStatus `json:"user_module_status,omitempty"`
}

// UserModuleStatus 模块叶子上的状态回显，供下游直接消费
type UserModuleStatus struct {
	CorrectnessPercentage int    `json:"correctness_percentage"`
	Status                string `json:"status"`
}

// ModuleDistribution 每次持久化个性化路径时附带的统计信息
type ModuleDistribution struct {
	TotalModules    int            `json:"total_modules"`
	MandatoryCount  int            `json:"mandatory_count"`
	OptionalCount   int            `json:"optional_count"`
	CountByCourse   map[string]int `json:"count_by_course"`
	GeneratedAtUnix int64          `json:"generated_at_unix"`
}
