package service

import (
	"edupath_backend/internal/model"
	"time"
)

// 课程树的纯变换函数。树是值语义的：每个函数都产出新切片，
// 输入树在任何情况下保持不变。

// BuildCourseStructure 把用户已分配的课程实体展开为课程树骨架。
// 此时不含个性化标记，模块默认必修
func BuildCourseStructure(courses []model.Course) []model.CourseNode {
	nodes := make([]model.CourseNode, 0, len(courses))
	for _, course := range courses {
		node := model.CourseNode{
			CourseID: course.ID,
			Title:    course.Title,
			Subjects: make([]model.SubjectNode, 0, len(course.Subjects)),
		}
		for _, subject := range course.Subjects {
			sn := model.SubjectNode{
				SubjectID: subject.ID,
				Title:     subject.Title,
				Modules:   make([]model.ModuleLeaf, 0, len(subject.Modules)),
			}
			for _, mod := range subject.Modules {
				if !mod.IsActive {
					continue
				}
				sn.Modules = append(sn.Modules, model.ModuleLeaf{
					ModuleID:    mod.ID,
					Title:       mod.Title,
					IsMandatory: true,
					Status:      model.ModuleStatusMandatory,
				})
			}
			node.Subjects = append(node.Subjects, sn)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// MergeCourseStructures 合并旧个性化树与最新分配树。合并绝不丢模块：
// 新树缺失的课程/科目/模块原样保留；同一科目下按模块ID去重，
// 新树条目优先；新树中某科目模块为空时回退保留旧树的模块
func MergeCourseStructures(previous, fresh []model.CourseNode) []model.CourseNode {
	if len(previous) == 0 {
		return cloneCourseStructure(fresh)
	}
	if len(fresh) == 0 {
		return cloneCourseStructure(previous)
	}

	prevByID := make(map[uint]model.CourseNode, len(previous))
	for _, c := range previous {
		prevByID[c.CourseID] = c
	}

	merged := make([]model.CourseNode, 0, len(fresh)+len(previous))
	seen := make(map[uint]bool, len(fresh))

	for _, course := range fresh {
		seen[course.CourseID] = true
		if prev, ok := prevByID[course.CourseID]; ok {
			merged = append(merged, mergeCourseNode(prev, course))
		} else {
			merged = append(merged, cloneCourseNode(course))
		}
	}

	// 旧树独有的课程追加在末尾
	for _, course := range previous {
		if !seen[course.CourseID] {
			merged = append(merged, cloneCourseNode(course))
		}
	}

	return merged
}

func mergeCourseNode(previous, fresh model.CourseNode) model.CourseNode {
	prevByID := make(map[uint]model.SubjectNode, len(previous.Subjects))
	for _, s := range previous.Subjects {
		prevByID[s.SubjectID] = s
	}

	out := model.CourseNode{
		CourseID: fresh.CourseID,
		Title:    fresh.Title,
		Subjects: make([]model.SubjectNode, 0, len(fresh.Subjects)),
	}
	seen := make(map[uint]bool, len(fresh.Subjects))

	for _, subject := range fresh.Subjects {
		seen[subject.SubjectID] = true
		if prev, ok := prevByID[subject.SubjectID]; ok {
			out.Subjects = append(out.Subjects, mergeSubjectNode(prev, subject))
		} else {
			out.Subjects = append(out.Subjects, cloneSubjectNode(subject))
		}
	}

	for _, subject := range previous.Subjects {
		if !seen[subject.SubjectID] {
			out.Subjects = append(out.Subjects, cloneSubjectNode(subject))
		}
	}

	return out
}

func mergeSubjectNode(previous, fresh model.SubjectNode) model.SubjectNode {
	out := model.SubjectNode{
		SubjectID: fresh.SubjectID,
		Title:     fresh.Title,
	}

	// 新树该科目为空时整体回退到旧树的模块
	if len(fresh.Modules) == 0 {
		out.Modules = append(out.Modules, previous.Modules...)
		return out
	}

	out.Modules = make([]model.ModuleLeaf, 0, len(fresh.Modules)+len(previous.Modules))
	seen := make(map[uint]bool, len(fresh.Modules))
	for _, mod := range fresh.Modules {
		seen[mod.ModuleID] = true
		out.Modules = append(out.Modules, mod)
	}
	for _, mod := range previous.Modules {
		if !seen[mod.ModuleID] {
			out.Modules = append(out.Modules, mod)
		}
	}

	return out
}

// PersonalizeCourseStructure 按测评成绩与分配关系标注课程树。
// 只有当前已分配且正确率达标的模块才降级为可选，未分配或无成绩
// 一律必修；历史成绩仍以指针回显，无成绩的模块不带 assessment_score 字段
func PersonalizeCourseStructure(structure []model.CourseNode, assigned []uint, scores map[uint]int) []model.CourseNode {
	assignedSet := make(map[uint]bool, len(assigned))
	for _, id := range assigned {
		assignedSet[id] = true
	}

	out := make([]model.CourseNode, 0, len(structure))
	for _, course := range structure {
		node := model.CourseNode{
			CourseID: course.CourseID,
			Title:    course.Title,
			Subjects: make([]model.SubjectNode, 0, len(course.Subjects)),
		}
		for _, subject := range course.Subjects {
			sn := model.SubjectNode{
				SubjectID: subject.SubjectID,
				Title:     subject.Title,
				Modules:   make([]model.ModuleLeaf, 0, len(subject.Modules)),
			}
			for _, mod := range subject.Modules {
				sn.Modules = append(sn.Modules, personalizeLeaf(mod, assignedSet, scores))
			}
			node.Subjects = append(node.Subjects, sn)
		}
		out = append(out, node)
	}
	return out
}

func personalizeLeaf(mod model.ModuleLeaf, assigned map[uint]bool, scores map[uint]int) model.ModuleLeaf {
	leaf := model.ModuleLeaf{
		ModuleID:   mod.ModuleID,
		Title:      mod.Title,
		IsAssigned: assigned[mod.ModuleID],
	}

	score, hasScore := scores[mod.ModuleID]
	if hasScore {
		s := score
		leaf.AssessmentScore = &s
		leaf.UserModuleStatus = &model.UserModuleStatus{
			CorrectnessPercentage: score,
			Status:                ClassifyModuleScore(score),
		}
	}

	// 未分配的模块不看历史成绩，保守按必修处理
	if leaf.IsAssigned && hasScore {
		leaf.Status = ClassifyModuleScore(score)
	} else {
		leaf.Status = model.ModuleStatusMandatory
	}

	leaf.IsMandatory = leaf.Status == model.ModuleStatusMandatory
	return leaf
}

// CollectModuleIDs 课程树中全部模块ID，按遍历顺序去重
func CollectModuleIDs(structure []model.CourseNode) []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, course := range structure {
		for _, subject := range course.Subjects {
			for _, mod := range subject.Modules {
				if !seen[mod.ModuleID] {
					seen[mod.ModuleID] = true
					ids = append(ids, mod.ModuleID)
				}
			}
		}
	}
	return ids
}

// DistributionStats 树的必修/可选分布统计，随个性化路径一并持久化
func DistributionStats(structure []model.CourseNode) model.ModuleDistribution {
	dist := model.ModuleDistribution{
		CountByCourse:   make(map[string]int, len(structure)),
		GeneratedAtUnix: time.Now().Unix(),
	}

	for _, course := range structure {
		count := 0
		for _, subject := range course.Subjects {
			for _, mod := range subject.Modules {
				count++
				dist.TotalModules++
				if mod.IsMandatory {
					dist.MandatoryCount++
				} else {
					dist.OptionalCount++
				}
			}
		}
		dist.CountByCourse[course.Title] = count
	}

	return dist
}

func cloneCourseStructure(structure []model.CourseNode) []model.CourseNode {
	out := make([]model.CourseNode, 0, len(structure))
	for _, c := range structure {
		out = append(out, cloneCourseNode(c))
	}
	return out
}

func cloneCourseNode(course model.CourseNode) model.CourseNode {
	out := model.CourseNode{
		CourseID: course.CourseID,
		Title:    course.Title,
		Subjects: make([]model.SubjectNode, 0, len(course.Subjects)),
	}
	for _, s := range course.Subjects {
		out.Subjects = append(out.Subjects, cloneSubjectNode(s))
	}
	return out
}

func cloneSubjectNode(subject model.SubjectNode) model.SubjectNode {
	out := model.SubjectNode{
		SubjectID: subject.SubjectID,
		Title:     subject.Title,
		Modules:   make([]model.ModuleLeaf, len(subject.Modules)),
	}
	copy(out.Modules, subject.Modules)
	return out
}
