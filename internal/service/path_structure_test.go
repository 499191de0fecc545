package service

import (
	"edupath_backend/internal/model"
	"testing"
)

func leafIDs(subject model.SubjectNode) map[uint]bool {
	ids := make(map[uint]bool, len(subject.Modules))
	for _, m := range subject.Modules {
		ids[m.ModuleID] = true
	}
	return ids
}

func TestMergeCourseStructuresNeverDropsModules(t *testing.T) {
	previous := []model.CourseNode{{
		CourseID: 1, Title: "Go基础",
		Subjects: []model.SubjectNode{{
			SubjectID: 10, Title: "语法",
			Modules: []model.ModuleLeaf{
				{ModuleID: 100, Title: "变量"},
				{ModuleID: 101, Title: "函数"},
			},
		}},
	}}
	fresh := []model.CourseNode{{
		CourseID: 1, Title: "Go基础",
		Subjects: []model.SubjectNode{{
			SubjectID: 10, Title: "语法",
			Modules: []model.ModuleLeaf{
				{ModuleID: 101, Title: "函数"},
				{ModuleID: 102, Title: "接口"},
			},
		}},
	}}

	merged := MergeCourseStructures(previous, fresh)
	if len(merged) != 1 || len(merged[0].Subjects) != 1 {
		t.Fatalf("合并后结构异常: %+v", merged)
	}

	ids := leafIDs(merged[0].Subjects[0])
	for _, want := range []uint{100, 101, 102} {
		if !ids[want] {
			t.Errorf("合并丢失模块 %d", want)
		}
	}
	if len(merged[0].Subjects[0].Modules) != 3 {
		t.Errorf("模块数 = %d, want 3（按ID去重）", len(merged[0].Subjects[0].Modules))
	}
}

func TestMergeCourseStructuresEmptyFreshSubjectFallsBack(t *testing.T) {
	previous := []model.CourseNode{{
		CourseID: 1,
		Subjects: []model.SubjectNode{{
			SubjectID: 10,
			Modules:   []model.ModuleLeaf{{ModuleID: 100}, {ModuleID: 101}},
		}},
	}}
	fresh := []model.CourseNode{{
		CourseID: 1,
		Subjects: []model.SubjectNode{{SubjectID: 10}},
	}}

	merged := MergeCourseStructures(previous, fresh)
	if got := len(merged[0].Subjects[0].Modules); got != 2 {
		t.Errorf("新树科目为空时应回退旧模块, got %d modules", got)
	}
}

func TestMergeCourseStructuresKeepsPreviousOnlyCourses(t *testing.T) {
	previous := []model.CourseNode{
		{CourseID: 1, Subjects: []model.SubjectNode{{SubjectID: 10, Modules: []model.ModuleLeaf{{ModuleID: 100}}}}},
		{CourseID: 2, Subjects: []model.SubjectNode{{SubjectID: 20, Modules: []model.ModuleLeaf{{ModuleID: 200}}}}},
	}
	fresh := []model.CourseNode{
		{CourseID: 1, Subjects: []model.SubjectNode{{SubjectID: 10, Modules: []model.ModuleLeaf{{ModuleID: 100}}}}},
	}

	merged := MergeCourseStructures(previous, fresh)
	if len(merged) != 2 {
		t.Fatalf("旧树独有课程被丢弃, got %d courses", len(merged))
	}
	if merged[1].CourseID != 2 {
		t.Errorf("旧树独有课程应追加在末尾, got course %d", merged[1].CourseID)
	}
}

func TestPersonalizeCourseStructure(t *testing.T) {
	structure := []model.CourseNode{{
		CourseID: 1, Title: "Go基础",
		Subjects: []model.SubjectNode{{
			SubjectID: 10, Title: "语法",
			Modules: []model.ModuleLeaf{
				{ModuleID: 100, Title: "变量"},
				{ModuleID: 101, Title: "函数"},
				{ModuleID: 102, Title: "接口"},
				{ModuleID: 103, Title: "泛型"},
			},
		}},
	}}

	assigned := []uint{100, 101}
	scores := map[uint]int{100: 95, 101: 60, 103: 95}

	got := PersonalizeCourseStructure(structure, assigned, scores)
	modules := got[0].Subjects[0].Modules

	// 95% → 可选
	if modules[0].Status != model.ModuleStatusOptional || modules[0].IsMandatory {
		t.Errorf("达标模块应为可选: %+v", modules[0])
	}
	if modules[0].AssessmentScore == nil || *modules[0].AssessmentScore != 95 {
		t.Errorf("成绩回显缺失: %+v", modules[0].AssessmentScore)
	}
	if modules[0].UserModuleStatus == nil || modules[0].UserModuleStatus.CorrectnessPercentage != 95 {
		t.Errorf("状态回显缺失: %+v", modules[0].UserModuleStatus)
	}

	// 60% → 必修
	if modules[1].Status != model.ModuleStatusMandatory || !modules[1].IsMandatory {
		t.Errorf("未达标模块应为必修: %+v", modules[1])
	}

	// 无成绩 → 必修，不带成绩字段
	if modules[2].Status != model.ModuleStatusMandatory || modules[2].AssessmentScore != nil {
		t.Errorf("无成绩模块应为必修且无成绩回显: %+v", modules[2])
	}
	if modules[2].IsAssigned {
		t.Error("未分配模块 is_assigned 应为 false")
	}

	// 未分配但有历史成绩 → 仍必修，成绩照常回显
	if modules[3].Status != model.ModuleStatusMandatory || !modules[3].IsMandatory {
		t.Errorf("未分配模块不应凭历史成绩降为可选: %+v", modules[3])
	}
	if modules[3].IsAssigned {
		t.Error("未分配模块 is_assigned 应为 false")
	}
	if modules[3].AssessmentScore == nil || *modules[3].AssessmentScore != 95 {
		t.Errorf("历史成绩应照常回显: %+v", modules[3].AssessmentScore)
	}

	// 输入树保持不变
	if structure[0].Subjects[0].Modules[0].Status != "" {
		t.Error("个性化变换不应修改输入树")
	}
}

func TestDistributionStats(t *testing.T) {
	structure := []model.CourseNode{{
		CourseID: 1, Title: "Go基础",
		Subjects: []model.SubjectNode{{
			SubjectID: 10,
			Modules: []model.ModuleLeaf{
				{ModuleID: 100, IsMandatory: true},
				{ModuleID: 101, IsMandatory: false},
				{ModuleID: 102, IsMandatory: true},
			},
		}},
	}}

	dist := DistributionStats(structure)
	if dist.TotalModules != 3 || dist.MandatoryCount != 2 || dist.OptionalCount != 1 {
		t.Errorf("分布统计错误: %+v", dist)
	}
	if dist.CountByCourse["Go基础"] != 3 {
		t.Errorf("课程计数错误: %+v", dist.CountByCourse)
	}
}
