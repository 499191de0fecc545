package repository

import (
	"edupath_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByIDAndUser(id, userID uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) FindLatestByUser(userID uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Complete 写入测评完成数据。只更新完成字段，其余列保持不变
func (r *AssessmentRepository) Complete(id uint, score int, passed bool, completedAt time.Time) error {
	return r.DB.Model(&model.Assessment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"score":        score,
		"passed":       passed,
		"completed_at": completedAt,
	}).Error
}

func (r *AssessmentRepository) CreateSession(s *model.AssessmentSession) error {
	return r.DB.Create(s).Error
}

// FindInProgressSession 返回用户最近一个进行中的会话。
// 并发 start 可能产生多个进行中会话，这里始终以最新一条为准
func (r *AssessmentRepository) FindInProgressSession(userID uint) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.SessionInProgress).
		Order("created_at DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssessmentRepository) FindSessionByAssessment(assessmentID uint) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.Where("assessment_id = ?", assessmentID).Order("created_at DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssessmentRepository) FindSessionByID(id uint) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssessmentRepository) UpdateSessionPosition(sessionID uint, position int) error {
	return r.DB.Model(&model.AssessmentSession{}).Where("id = ?", sessionID).
		UpdateColumn("current_position", position).Error
}

func (r *AssessmentRepository) UpdateSessionStatus(sessionID uint, status string) error {
	return r.DB.Model(&model.AssessmentSession{}).Where("id = ?", sessionID).
		UpdateColumn("status", status).Error
}

// UpsertSessionResponse 按 (session_id, q_index) 覆盖写，同一题序重复保存不产生新行
func (r *AssessmentRepository) UpsertSessionResponse(resp *model.SessionResponse) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "q_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"question_id", "answer_text", "skipped", "updated_at",
		}),
	}).Create(resp).Error
}

func (r *AssessmentRepository) ListSessionResponses(sessionID uint) ([]model.SessionResponse, error) {
	var responses []model.SessionResponse
	err := r.DB.Where("session_id = ?", sessionID).Order("q_index ASC").Find(&responses).Error
	return responses, err
}

func (r *AssessmentRepository) CreateResponses(responses []model.AssessmentResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.DB.Create(&responses).Error
}

// ListResponsesByUser 用户全部历史已完成测评的逐题台账
func (r *AssessmentRepository) ListResponsesByUser(userID uint) ([]model.AssessmentResponse, error) {
	var responses []model.AssessmentResponse
	err := r.DB.Where("user_id = ?", userID).Find(&responses).Error
	return responses, err
}

// WrongCountByModule 统计用户历史上每个模块的答错次数（不含跳过），用于模块锁定
func (r *AssessmentRepository) WrongCountByModule(userID uint) (map[uint]int, error) {
	type row struct {
		ModuleID uint
		Count    int
	}
	var rows []row
	err := r.DB.Model(&model.AssessmentResponse{}).
		Select("module_id, COUNT(*) AS count").
		Where("user_id = ? AND correct = ? AND skipped = ?", userID, false, false).
		Group("module_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.ModuleID] = r.Count
	}
	return counts, nil
}
