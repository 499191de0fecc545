package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"math"
	"time"
)

// OptionalThreshold 模块正确率达到该值即降级为可选
const OptionalThreshold = 90

// ModuleStatusService 把历史测评台账聚合为每模块正确率，
// 并维护 用户×模块 的必修/可选台账。纯重算，幂等
type ModuleStatusService struct {
	StatusRepo     *repository.ModuleStatusRepository
	AssessmentRepo *repository.AssessmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewModuleStatusService(
	statusRepo *repository.ModuleStatusRepository,
	assessmentRepo *repository.AssessmentRepository,
	courseRepo *repository.CourseRepository,
) *ModuleStatusService {
	return &ModuleStatusService{
		StatusRepo:     statusRepo,
		AssessmentRepo: assessmentRepo,
		CourseRepo:     courseRepo,
	}
}

// Recalculate 重算用户全部模块状态并合并写入台账，返回 moduleID → 正确率。
// 已分配但从未作答的模块强制记为 0%/必修，绝不因无数据而"默认可选"
func (s *ModuleStatusService) Recalculate(userID uint) (map[uint]int, error) {
	responses, err := s.AssessmentRepo.ListResponsesByUser(userID)
	if err != nil {
		return nil, err
	}

	assigned, err := s.CourseRepo.AssignedModuleIDs(userID)
	if err != nil {
		return nil, err
	}

	scores := AggregateModuleScores(responses, assigned)

	now := time.Now()
	records := make([]model.ModuleStatusRecord, 0, len(scores))
	for moduleID, pct := range scores {
		records = append(records, model.ModuleStatusRecord{
			UserID:                userID,
			ModuleID:              moduleID,
			CorrectnessPercentage: pct,
			Status:                ClassifyModuleScore(pct),
			LastCalculatedAt:      now,
		})
	}

	if err := s.StatusRepo.UpsertAll(records); err != nil {
		return nil, err
	}

	return scores, nil
}

// SeedAssigned 跳过测评时的快速通道：所有已分配模块直接记 0%/必修
func (s *ModuleStatusService) SeedAssigned(userID uint) error {
	assigned, err := s.CourseRepo.AssignedModuleIDs(userID)
	if err != nil {
		return err
	}

	now := time.Now()
	records := make([]model.ModuleStatusRecord, 0, len(assigned))
	for _, moduleID := range assigned {
		records = append(records, model.ModuleStatusRecord{
			UserID:           userID,
			ModuleID:         moduleID,
			Status:           model.ModuleStatusMandatory,
			LastCalculatedAt: now,
		})
	}

	return s.StatusRepo.UpsertAll(records)
}

// AggregateModuleScores 纯聚合：有效作答（未跳过且答案非空）按模块累计正误，
// 正确率四舍五入；已分配但无任何作答的模块补 0
func AggregateModuleScores(responses []model.AssessmentResponse, assignedModules []uint) map[uint]int {
	type tally struct {
		correct int
		total   int
	}
	tallies := make(map[uint]*tally)

	for _, resp := range responses {
		if resp.Skipped || resp.AnswerText == "" {
			continue
		}
		t, ok := tallies[resp.ModuleID]
		if !ok {
			t = &tally{}
			tallies[resp.ModuleID] = t
		}
		t.total++
		if resp.Correct {
			t.correct++
		}
	}

	scores := make(map[uint]int, len(tallies))
	for moduleID, t := range tallies {
		if t.total > 0 {
			scores[moduleID] = int(math.Round(100 * float64(t.correct) / float64(t.total)))
		} else {
			scores[moduleID] = 0
		}
	}

	for _, moduleID := range assignedModules {
		if _, ok := scores[moduleID]; !ok {
			scores[moduleID] = 0
		}
	}

	return scores
}

// ClassifyModuleScore 正确率达标可选，否则必修
func ClassifyModuleScore(pct int) string {
	if pct >= OptionalThreshold {
		return model.ModuleStatusOptional
	}
	return model.ModuleStatusMandatory
}
