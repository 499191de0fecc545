package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func newOnboardingService(db *gorm.DB) *OnboardingService {
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	statusRepo := repository.NewModuleStatusRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)

	moduleStatus := NewModuleStatusService(statusRepo, repository.NewAssessmentRepository(db), courseRepo)
	learningPath := NewLearningPathService(pathRepo, courseRepo, statusRepo, userRepo)
	return NewOnboardingService(userRepo, courseRepo, moduleStatus, learningPath)
}

func TestSkipAssessment(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	svc := newOnboardingService(db)

	result, err := svc.SkipAssessment(c.user.ID)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !result.OnboardingComplete {
		t.Error("应标记引导完成")
	}
	if result.LearningPath == nil {
		t.Fatal("跳过测评后应生成个性化路径")
	}

	user, err := repository.NewUserRepository(db).FindByID(c.user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !user.OnboardingComplete {
		t.Error("用户引导标记未落库")
	}

	// 全部已分配模块记为 0/mandatory
	records, err := repository.NewModuleStatusRepository(db).ListByUser(c.user.ID)
	if err != nil {
		t.Fatalf("list status: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("台账行数 = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Status != model.ModuleStatusMandatory {
			t.Errorf("跳过测评的模块应为必修: %+v", r)
		}
	}

	// 路径中的模块全部必修
	structure := decodeStructure(t, result.LearningPath)
	for _, course := range structure {
		for _, subject := range course.Subjects {
			for _, m := range subject.Modules {
				if !m.IsMandatory {
					t.Errorf("模块 %d 应为必修", m.ModuleID)
				}
			}
		}
	}
}

func TestSelectSubject(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	svc := newOnboardingService(db)

	if err := svc.SelectSubject(c.user.ID, c.subject.ID); err != nil {
		t.Fatalf("select subject: %v", err)
	}

	user, err := repository.NewUserRepository(db).FindByID(c.user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.SelectedSubjectID == nil || *user.SelectedSubjectID != c.subject.ID {
		t.Errorf("科目范围未保存: %v", user.SelectedSubjectID)
	}

	if err := svc.SelectSubject(c.user.ID, 9999); !errors.Is(err, util.ErrModuleNotFound) {
		t.Errorf("不存在的科目应返回 ErrModuleNotFound, got %v", err)
	}
}
