package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"encoding/json"
	"testing"
	"time"
)

func decodeStructure(t *testing.T, path *model.PersonalizedLearningPath) []model.CourseNode {
	t.Helper()
	var structure []model.CourseNode
	if err := json.Unmarshal(path.CourseStructure, &structure); err != nil {
		t.Fatalf("unmarshal course structure: %v", err)
	}
	return structure
}

func TestGeneratePersonalizedPath(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, svc, _ := newTestStack(t, db)

	// 模块A已达标
	statusRepo := repository.NewModuleStatusRepository(db)
	err := statusRepo.UpsertAll([]model.ModuleStatusRecord{{
		UserID: c.user.ID, ModuleID: c.moduleA.ID,
		CorrectnessPercentage: 95, Status: model.ModuleStatusOptional,
		LastCalculatedAt: time.Now(),
	}})
	if err != nil {
		t.Fatalf("seed status: %v", err)
	}

	path, err := svc.GeneratePersonalizedPath(c.user.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	structure := decodeStructure(t, path)
	if len(structure) != 1 || len(structure[0].Subjects) != 1 {
		t.Fatalf("课程树形状异常: %+v", structure)
	}

	byID := make(map[uint]model.ModuleLeaf)
	for _, m := range structure[0].Subjects[0].Modules {
		byID[m.ModuleID] = m
	}
	if leaf := byID[c.moduleA.ID]; leaf.Status != model.ModuleStatusOptional || !leaf.IsAssigned {
		t.Errorf("模块A应为已分配可选: %+v", leaf)
	}
	if leaf := byID[c.moduleB.ID]; leaf.Status != model.ModuleStatusMandatory || leaf.AssessmentScore != nil {
		t.Errorf("模块B应为无成绩必修: %+v", leaf)
	}

	// course_structure 步骤被个性化树替换
	var steps []model.PathStep
	if err := json.Unmarshal(path.Steps, &steps); err != nil {
		t.Fatalf("unmarshal steps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("步骤数 = %d, want 3", len(steps))
	}
	var resource model.StepResource
	if err := json.Unmarshal(steps[1].Resource, &resource); err != nil {
		t.Fatalf("unmarshal resource: %v", err)
	}
	if resource.Type != "course_structure" || len(resource.CourseStructure) != 1 {
		t.Errorf("课程结构步骤未被替换: %+v", resource)
	}

	// 分布统计随路径落库
	var dist model.ModuleDistribution
	if err := json.Unmarshal(path.ModuleDistribution, &dist); err != nil {
		t.Fatalf("unmarshal distribution: %v", err)
	}
	if dist.TotalModules != 2 || dist.MandatoryCount != 1 || dist.OptionalCount != 1 {
		t.Errorf("分布统计: %+v", dist)
	}
}

func TestGenerateIsUpsertPerUser(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, svc, _ := newTestStack(t, db)

	first, err := svc.GeneratePersonalizedPath(c.user.ID)
	if err != nil {
		t.Fatalf("generate #1: %v", err)
	}
	second, err := svc.GeneratePersonalizedPath(c.user.ID)
	if err != nil {
		t.Fatalf("generate #2: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("每用户应只有一行个性化路径: %d != %d", first.ID, second.ID)
	}
}

func TestRefreshKeepsModulesAfterUnenroll(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, svc, _ := newTestStack(t, db)

	if _, err := svc.GeneratePersonalizedPath(c.user.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	// 退课后刷新：分配树为空，旧副本中的模块不能丢
	if err := db.Where("user_id = ?", c.user.ID).Delete(&model.CourseEnrollment{}).Error; err != nil {
		t.Fatalf("unenroll: %v", err)
	}

	if err := svc.RefreshUserLearningPaths(c.user.ID); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	path, err := svc.GetPersonalizedForUser(c.user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	structure := decodeStructure(t, path)
	if len(CollectModuleIDs(structure)) != 2 {
		t.Errorf("刷新后模块被丢弃: %+v", structure)
	}
}

func TestRefreshGeneratesWhenMissing(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, svc, _ := newTestStack(t, db)

	if err := svc.RefreshUserLearningPaths(c.user.ID); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.GetPersonalizedForUser(c.user.ID); err != nil {
		t.Errorf("无副本时刷新应等同首次生成: %v", err)
	}
}

func TestCompleteStepAwardsXPOnce(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, svc, _ := newTestStack(t, db)

	if _, err := svc.GeneratePersonalizedPath(c.user.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	first, err := svc.CompleteStep(c.user.ID, 0)
	if err != nil {
		t.Fatalf("complete step: %v", err)
	}
	if first.XPAwarded != stepCompletionXP {
		t.Errorf("首次完成应发放XP: %+v", first)
	}

	second, err := svc.CompleteStep(c.user.ID, 0)
	if err != nil {
		t.Fatalf("complete step again: %v", err)
	}
	if second.XPAwarded != 0 {
		t.Errorf("重复完成不应再发XP: %+v", second)
	}

	user, err := repository.NewUserRepository(db).FindByID(c.user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.XP != stepCompletionXP {
		t.Errorf("用户XP = %d, want %d", user.XP, stepCompletionXP)
	}

	// 越界步骤被拒绝
	if _, err := svc.CompleteStep(c.user.ID, 99); err == nil {
		t.Error("越界步骤应返回错误")
	}

	progress, err := svc.Progress(c.user.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.CompletedSteps != 1 || progress.TotalSteps != 3 || progress.Percent != 33 {
		t.Errorf("进度: %+v", progress)
	}
}
