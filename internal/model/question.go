package model

import "encoding/json"

const (
	QuestionTypeMCQ  = "mcq"
	QuestionTypeText = "text"
)

// Question 测评题目。会话一旦引用即视为快照，不允许就地修改已发布题目
// swagger:model Question
type Question struct {
	BaseModel
	ModuleID  uint   `gorm:"index;not null" json:"moduleId"`
	Type      string `gorm:"size:20;not null" json:"type"` // mcq | text
	Prompt    string `gorm:"type:text;not null" json:"prompt"`
	ImageKey  string `gorm:"size:255" json:"imageKey,omitempty"` // 对象存储中的图片键
	Points    int    `gorm:"default:1" json:"points"`
	TimeLimit int    `gorm:"default:0" json:"timeLimit"` // 秒，0表示不限时
	IsActive  bool   `gorm:"default:true" json:"isActive"`

	// 文本题评分规则
	CorrectAnswer    string          `gorm:"type:text" json:"-"`
	CaseSensitive    bool            `gorm:"default:false" json:"-"`
	ExactMatch       bool            `gorm:"default:false" json:"-"`
	AlternateAnswers json.RawMessage `gorm:"type:json" json:"-"` // JSON 字符串数组
	Keywords         json.RawMessage `gorm:"type:json" json:"-"` // JSON 字符串数组

	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// AlternateList 解析备选正确答案列表，解析失败时返回空
func (q *Question) AlternateList() []string {
	return decodeStringList(q.AlternateAnswers)
}

// KeywordList 解析评分关键词列表
func (q *Question) KeywordList() []string {
	return decodeStringList(q.Keywords)
}

func decodeStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel
	QuestionID   uint   `gorm:"index;not null" json:"questionId"`
	Text         string `gorm:"type:text;not null" json:"text"`
	IsCorrect    bool   `gorm:"default:false" json:"-"`
	DisplayOrder int    `gorm:"default:0" json:"displayOrder"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
