package database

import (
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// Migrate 执行全部实体的自动迁移，测试中也会在 sqlite 上复用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Checkin{},
		&model.Course{},
		&model.Subject{},
		&model.Module{},
		&model.CourseEnrollment{},
		&model.Question{},
		&model.QuestionOption{},
		&model.Assessment{},
		&model.AssessmentSession{},
		&model.SessionResponse{},
		&model.AssessmentResponse{},
		&model.ModuleStatusRecord{},
		&model.LearningPath{},
		&model.PersonalizedLearningPath{},
		&model.PathStepCompletion{},
	)
}

// seedDefaults 空库时插入默认的模板学习路径，保证推荐接口始终有结果
func seedDefaults(db *gorm.DB) {
	var count int64
	db.Model(&model.LearningPath{}).Count(&count)
	if count > 0 {
		return
	}

	defaultSteps := []model.PathStep{
		{Title: "入学测评", Type: "assessment", IsRequired: true},
		{Title: "核心课程", Type: "course", IsRequired: true,
			Resource: json.RawMessage(`{"type":"course_structure","course_structure":[]}`)},
		{Title: "综合练习", Type: "practice", IsRequired: false},
	}
	stepsJSON, _ := json.Marshal(defaultSteps)

	defaults := []model.LearningPath{
		{Title: "后端工程师之路", Description: "面向后端方向的默认学习路径", CareerGoal: "backend", Steps: stepsJSON},
		{Title: "前端工程师之路", Description: "面向前端方向的默认学习路径", CareerGoal: "frontend", Steps: stepsJSON},
		{Title: "通用编程基础", Description: "未选择职业目标时的兜底路径", CareerGoal: "general", Steps: stepsJSON},
	}
	for _, p := range defaults {
		db.Create(&p)
	}
}
