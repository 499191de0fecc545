package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CareerGoal  string `gorm:"size:100;index" json:"careerGoal"`
	IsPublished bool   `gorm:"default:true" json:"isPublished"`

	Subjects []Subject `gorm:"foreignKey:CourseID" json:"subjects,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`

	Modules []Module `gorm:"foreignKey:SubjectID" json:"modules,omitempty"`
}

func (Subject) TableName() string {
	return "subjects"
}

// swagger:model Module
type Module struct {
	BaseModel
	SubjectID uint   `gorm:"index;not null" json:"subjectId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Order     int    `gorm:"default:0" json:"order"`
	IsActive  bool   `gorm:"default:true" json:"isActive"`
}

func (Module) TableName() string {
	return "modules"
}

// CourseEnrollment 用户选课记录，决定其"已分配模块"集合
type CourseEnrollment struct {
	BaseModel
	UserID     uint      `gorm:"index:idx_enroll_user_course,unique" json:"userId"`
	CourseID   uint      `gorm:"index:idx_enroll_user_course,unique" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
