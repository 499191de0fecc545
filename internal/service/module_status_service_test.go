package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"testing"
)

func TestClassifyModuleScore(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{0, model.ModuleStatusMandatory},
		{89, model.ModuleStatusMandatory},
		{90, model.ModuleStatusOptional},
		{100, model.ModuleStatusOptional},
	}
	for _, tt := range tests {
		if got := ClassifyModuleScore(tt.pct); got != tt.want {
			t.Errorf("ClassifyModuleScore(%d) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestAggregateModuleScores(t *testing.T) {
	responses := []model.AssessmentResponse{
		{ModuleID: 1, AnswerText: "a", Correct: true},
		{ModuleID: 1, AnswerText: "b", Correct: true},
		{ModuleID: 1, AnswerText: "c", Correct: false},
		{ModuleID: 2, AnswerText: "d", Correct: true},
		// 跳过与空答案不计入分母；模块3只有跳过记录
		{ModuleID: 2, Skipped: true},
		{ModuleID: 2, AnswerText: ""},
		{ModuleID: 3, Skipped: true},
	}
	assigned := []uint{1, 2, 4}

	scores := AggregateModuleScores(responses, assigned)

	if scores[1] != 67 {
		t.Errorf("模块1 = %d, want 67", scores[1])
	}
	if scores[2] != 100 {
		t.Errorf("模块2 = %d, want 100", scores[2])
	}
	// 已分配但从未有效作答 → 0
	if pct, ok := scores[4]; !ok || pct != 0 {
		t.Errorf("模块4 = %d(%v), want 0", pct, ok)
	}
	// 模块3未分配且无有效作答，不应出现
	if _, ok := scores[3]; ok {
		t.Errorf("模块3不应有成绩: %v", scores)
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, _, svc := newTestStack(t, db)

	responses := []model.AssessmentResponse{
		{AssessmentID: 1, UserID: c.user.ID, QuestionID: c.questionsA[0].ID, ModuleID: c.moduleA.ID, AnswerText: "x", Correct: true},
		{AssessmentID: 1, UserID: c.user.ID, QuestionID: c.questionsA[1].ID, ModuleID: c.moduleA.ID, AnswerText: "x", Correct: false},
		{AssessmentID: 1, UserID: c.user.ID, QuestionID: c.questionsB[0].ID, ModuleID: c.moduleB.ID, AnswerText: "x", Correct: true},
	}
	if err := db.Create(&responses).Error; err != nil {
		t.Fatalf("seed responses: %v", err)
	}

	for i := 0; i < 2; i++ {
		scores, err := svc.Recalculate(c.user.ID)
		if err != nil {
			t.Fatalf("recalculate #%d: %v", i+1, err)
		}
		if scores[c.moduleA.ID] != 50 || scores[c.moduleB.ID] != 100 {
			t.Errorf("scores = %v", scores)
		}
	}

	records, err := repository.NewModuleStatusRepository(db).ListByUser(c.user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// 两个模块各一行，重算不产生重复
	if len(records) != 2 {
		t.Fatalf("台账行数 = %d, want 2", len(records))
	}
}

func TestSeedAssignedMarksAllMandatory(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)
	_, _, svc := newTestStack(t, db)

	if err := svc.SeedAssigned(c.user.ID); err != nil {
		t.Fatalf("seed assigned: %v", err)
	}

	records, err := repository.NewModuleStatusRepository(db).ListByUser(c.user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("台账行数 = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Status != model.ModuleStatusMandatory || r.CorrectnessPercentage != 0 {
			t.Errorf("跳过测评的模块应为 0/mandatory: %+v", r)
		}
	}
}
