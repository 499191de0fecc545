package service

import (
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/pkg/database"
	"edupath_backend/pkg/logger"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// curriculum 测试用的最小课程体系：1课程 / 1科目 / 2模块 / 6题
type curriculum struct {
	user       *model.User
	course     *model.Course
	subject    *model.Subject
	moduleA    *model.Module
	moduleB    *model.Module
	questionsA []model.Question // 4题
	questionsB []model.Question // 2题
}

func mcqWithAnswer(moduleID uint, prompt, correct, wrong string) model.Question {
	return model.Question{
		ModuleID: moduleID,
		Type:     model.QuestionTypeMCQ,
		Prompt:   prompt,
		Points:   1,
		IsActive: true,
		Options: []model.QuestionOption{
			{Text: correct, IsCorrect: true, DisplayOrder: 0},
			{Text: wrong, IsCorrect: false, DisplayOrder: 1},
		},
	}
}

func seedCurriculum(t *testing.T, db *gorm.DB) *curriculum {
	t.Helper()

	user := &model.User{Name: "测试学生", Email: "student@test.local", Password: "x", Role: model.Student, CareerGoal: "backend"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	course := &model.Course{Title: "Go基础", CareerGoal: "backend", IsPublished: true}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	subject := &model.Subject{CourseID: course.ID, Title: "语法"}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	moduleA := &model.Module{SubjectID: subject.ID, Title: "变量", IsActive: true}
	moduleB := &model.Module{SubjectID: subject.ID, Title: "函数", IsActive: true}
	if err := db.Create(moduleA).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}
	if err := db.Create(moduleB).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}

	questionsA := []model.Question{
		mcqWithAnswer(moduleA.ID, "A1", "对A1", "错A1"),
		mcqWithAnswer(moduleA.ID, "A2", "对A2", "错A2"),
		mcqWithAnswer(moduleA.ID, "A3", "对A3", "错A3"),
		mcqWithAnswer(moduleA.ID, "A4", "对A4", "错A4"),
	}
	questionsB := []model.Question{
		mcqWithAnswer(moduleB.ID, "B1", "对B1", "错B1"),
		mcqWithAnswer(moduleB.ID, "B2", "对B2", "错B2"),
	}
	if err := db.Create(&questionsA).Error; err != nil {
		t.Fatalf("seed questions: %v", err)
	}
	if err := db.Create(&questionsB).Error; err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	if err := repository.NewCourseRepository(db).Enroll(user.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	seedTemplatePath(t, db)

	return &curriculum{
		user:       user,
		course:     course,
		subject:    subject,
		moduleA:    moduleA,
		moduleB:    moduleB,
		questionsA: questionsA,
		questionsB: questionsB,
	}
}

func seedTemplatePath(t *testing.T, db *gorm.DB) {
	t.Helper()
	steps := []model.PathStep{
		{Title: "入学测评", Type: "assessment", IsRequired: true},
		{Title: "核心课程", Type: "course", IsRequired: true,
			Resource: json.RawMessage(`{"type":"course_structure","course_structure":[]}`)},
		{Title: "综合练习", Type: "practice", IsRequired: false},
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		t.Fatalf("marshal steps: %v", err)
	}
	path := &model.LearningPath{Title: "后端工程师之路", CareerGoal: "backend", Steps: stepsJSON}
	if err := db.Create(path).Error; err != nil {
		t.Fatalf("seed template path: %v", err)
	}
}

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()
	return &StorageService{Provider: &LocalStorageProvider{
		Config: &config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}}
}

// newTestStack 组装一整套基于内存库的服务，redis 缓存降级为直读
func newTestStack(t *testing.T, db *gorm.DB) (*AssessmentService, *LearningPathService, *ModuleStatusService) {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	statusRepo := repository.NewModuleStatusRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)

	moduleStatus := NewModuleStatusService(statusRepo, assessmentRepo, courseRepo)
	learningPath := NewLearningPathService(pathRepo, courseRepo, statusRepo, userRepo)
	assessment := NewAssessmentService(
		assessmentRepo,
		questionRepo,
		userRepo,
		moduleStatus,
		learningPath,
		NewLockedModuleCache(nil),
		newTestStorage(t),
	)
	return assessment, learningPath, moduleStatus
}
