package service

import (
	"edupath_backend/internal/model"
	"encoding/json"
	"testing"
)

func mcqQuestion(options ...model.QuestionOption) *model.Question {
	return &model.Question{
		Type:    model.QuestionTypeMCQ,
		Prompt:  "下列哪项正确?",
		Options: options,
	}
}

func TestGradeMCQAnswer(t *testing.T) {
	q := mcqQuestion(
		model.QuestionOption{Text: "堆", IsCorrect: false, DisplayOrder: 0},
		model.QuestionOption{Text: "栈", IsCorrect: true, DisplayOrder: 1},
		model.QuestionOption{Text: "队列", IsCorrect: false, DisplayOrder: 2},
	)

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"选项文本命中正确项", "栈", true},
		{"选项文本命中错误项", "堆", false},
		{"按序号提交正确项", "1", true},
		{"按序号提交错误项", "0", false},
		{"序号越界", "9", false},
		{"空答案", "", false},
		{"无关文本", "链表", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GradeAnswer(q, tt.answer); got != tt.want {
				t.Errorf("GradeAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestGradeTextAnswerExactAndContains(t *testing.T) {
	q := &model.Question{
		Type:          model.QuestionTypeText,
		CorrectAnswer: "goroutine",
	}

	if !GradeTextAnswer(q, "goroutine") {
		t.Error("精确匹配应判对")
	}
	if !GradeTextAnswer(q, "GOROUTINE") {
		t.Error("默认大小写不敏感应判对")
	}
	if !GradeTextAnswer(q, "答案是 goroutine 没错") {
		t.Error("非严格模式包含标准答案应判对")
	}

	q.ExactMatch = true
	if GradeTextAnswer(q, "答案是 goroutine 没错") {
		t.Error("严格模式下包含匹配应判错")
	}

	q.CaseSensitive = true
	if GradeTextAnswer(q, "GOROUTINE") {
		t.Error("大小写敏感时应判错")
	}
}

func TestGradeTextAnswerAlternates(t *testing.T) {
	alternates, _ := json.Marshal([]string{"hashmap", "哈希表"})
	q := &model.Question{
		Type:             model.QuestionTypeText,
		CorrectAnswer:    "hash table",
		ExactMatch:       true,
		AlternateAnswers: alternates,
	}

	if !GradeTextAnswer(q, "哈希表") {
		t.Error("备选答案精确匹配应判对")
	}
	if !GradeTextAnswer(q, "HashMap") {
		t.Error("备选答案大小写不敏感应判对")
	}
	if GradeTextAnswer(q, "红黑树") {
		t.Error("未命中任何答案应判错")
	}
	if GradeTextAnswer(q, "用 哈希表 实现即可") {
		t.Error("严格模式下包含备选答案应判错")
	}

	q.ExactMatch = false
	if !GradeTextAnswer(q, "用 哈希表 实现即可") {
		t.Error("非严格模式包含备选答案应判对")
	}
}

func TestGradeTextAnswerKeywords(t *testing.T) {
	keywords, _ := json.Marshal([]string{"并发", "通道", "同步"})
	q := &model.Question{
		Type:       model.QuestionTypeText,
		ExactMatch: true,
		Keywords:   keywords,
	}

	// 3个关键词需要命中 ceil(3/2)=2 个
	if GradeTextAnswer(q, "只提到了并发") {
		t.Error("命中1/3关键词应判错")
	}
	if !GradeTextAnswer(q, "并发程序常用通道通信") {
		t.Error("命中2/3关键词应判对")
	}
	if !GradeTextAnswer(q, "并发 通道 同步 全齐") {
		t.Error("全部命中应判对")
	}
}
