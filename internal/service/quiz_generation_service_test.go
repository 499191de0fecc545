package service

import (
	"context"
	"edupath_backend/internal/config"
	"edupath_backend/internal/repository"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateForModuleStopsOnServerSignal(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)

	served := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.MainTopic != c.moduleA.Title {
			t.Errorf("main_topic = %q", req.MainTopic)
		}
		if req.QuestionNumber != served+1 {
			t.Errorf("question_number = %d, want %d", req.QuestionNumber, served+1)
		}
		// 历史逐轮累积
		if len(req.ConversationHistory) != served {
			t.Errorf("history len = %d, want %d", len(req.ConversationHistory), served)
		}

		resp := generationResponse{}
		if served < 2 {
			resp.Question = &generatedQuestion{
				Type:   "mcq",
				Prompt: "生成题",
				Options: []generatedOption{
					{Text: "对", Correct: true},
					{Text: "错", Correct: false},
				},
				Points: 1,
			}
			served++
		} else {
			resp.Stop = true
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	questionRepo := repository.NewQuestionRepository(db)
	svc := NewQuizGenerationService(
		&config.GenerationConfig{BaseURL: server.URL, MaxQuestions: 10},
		questionRepo,
		repository.NewCourseRepository(db),
	)

	result, err := svc.GenerateForModule(context.Background(), &GenerateQuizRequest{ModuleID: c.moduleA.ID})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Generated != 2 {
		t.Errorf("generated = %d, want 2", result.Generated)
	}

	count, err := questionRepo.CountByModule(c.moduleA.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	// 原有4题 + 新生成2题
	if count != 6 {
		t.Errorf("题目总数 = %d, want 6", count)
	}
}

func TestGenerateForModuleRespectsMaxQuestions(t *testing.T) {
	db := newTestDB(t)
	c := seedCurriculum(t, db)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 永不主动停止
		json.NewEncoder(w).Encode(generationResponse{
			Question: &generatedQuestion{Type: "text", Prompt: "问答题", CorrectAnswer: "答案"},
		})
	}))
	defer server.Close()

	svc := NewQuizGenerationService(
		&config.GenerationConfig{BaseURL: server.URL, MaxQuestions: 3},
		repository.NewQuestionRepository(db),
		repository.NewCourseRepository(db),
	)

	result, err := svc.GenerateForModule(context.Background(), &GenerateQuizRequest{ModuleID: c.moduleB.ID})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Generated != 3 {
		t.Errorf("generated = %d, want 3（配置上限）", result.Generated)
	}
}
