package service

import (
	"edupath_backend/internal/model"
	"math"
	"sort"
	"strconv"
	"strings"
)

// 判分纯函数。选择题按选项正误查表，文本题依次尝试
// 精确匹配、包含匹配、备选答案和关键词覆盖。

// GradeAnswer 判定一条作答是否正确。跳过与空答案一律判错，由调用方决定是否计入分母
func GradeAnswer(q *model.Question, answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	if q.Type == model.QuestionTypeMCQ {
		return gradeMCQAnswer(q, answer)
	}
	return GradeTextAnswer(q, answer)
}

// gradeMCQAnswer 选择题判分：优先按选项文本匹配，其次允许提交选项序号。
// 命中多个同文本选项时以展示顺序靠前者为准
func gradeMCQAnswer(q *model.Question, answer string) bool {
	answer = strings.TrimSpace(answer)

	options := make([]model.QuestionOption, len(q.Options))
	copy(options, q.Options)
	sort.Slice(options, func(i, j int) bool { return options[i].DisplayOrder < options[j].DisplayOrder })

	for _, opt := range options {
		if strings.TrimSpace(opt.Text) == answer {
			return opt.IsCorrect
		}
	}

	if idx, err := strconv.Atoi(answer); err == nil && idx >= 0 && idx < len(options) {
		return options[idx].IsCorrect
	}

	return false
}

// GradeTextAnswer 文本题判分。大小写处理由题目配置决定：
//  1. 与标准答案精确匹配
//  2. 非严格模式下，提交内容包含标准答案也算正确
//  3. 与任一备选答案精确匹配，非严格模式下包含备选答案也算
//  4. 命中关键词数达到 ceil(关键词总数/2)
func GradeTextAnswer(q *model.Question, answer string) bool {
	normalize := func(s string) string {
		s = strings.TrimSpace(s)
		if !q.CaseSensitive {
			s = strings.ToLower(s)
		}
		return s
	}

	submitted := normalize(answer)
	expected := normalize(q.CorrectAnswer)

	if expected != "" {
		if submitted == expected {
			return true
		}
		if !q.ExactMatch && strings.Contains(submitted, expected) {
			return true
		}
	}

	for _, alt := range q.AlternateList() {
		a := normalize(alt)
		if a == "" {
			continue
		}
		if submitted == a {
			return true
		}
		if !q.ExactMatch && strings.Contains(submitted, a) {
			return true
		}
	}

	keywords := q.KeywordList()
	if len(keywords) > 0 {
		matched := 0
		for _, kw := range keywords {
			if k := normalize(kw); k != "" && strings.Contains(submitted, k) {
				matched++
			}
		}
		required := int(math.Ceil(float64(len(keywords)) / 2))
		if matched >= required {
			return true
		}
	}

	return false
}
