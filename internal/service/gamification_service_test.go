package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"errors"
	"testing"
	"time"
)

func TestCheckinAndStreak(t *testing.T) {
	db := newTestDB(t)
	user := &model.User{Name: "学生", Email: "g@test.local", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := NewGamificationService(repository.NewUserRepository(db), repository.NewCheckinRepository(db))

	// 昨天已有签到记录，今天签到后连续2天
	yesterday := &model.Checkin{UserID: user.ID, CheckinAt: time.Now().AddDate(0, 0, -1)}
	if err := db.Create(yesterday).Error; err != nil {
		t.Fatalf("seed checkin: %v", err)
	}

	result, err := svc.Checkin(user.ID)
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if result.Streak != 2 {
		t.Errorf("streak = %d, want 2", result.Streak)
	}

	// 同日重复签到
	if _, err := svc.Checkin(user.ID); !errors.Is(err, util.ErrAlreadyCheckedIn) {
		t.Errorf("重复签到应返回 ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestGetUserAchievements(t *testing.T) {
	db := newTestDB(t)
	users := []model.User{
		{Name: "甲", Email: "a@test.local", Password: "x", XP: 3000},
		{Name: "乙", Email: "b@test.local", Password: "x", XP: 500},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}

	svc := NewGamificationService(repository.NewUserRepository(db), repository.NewCheckinRepository(db))

	got, err := svc.GetUserAchievements(users[0].ID)
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}

	if got.TotalXP != 3000 || got.Tier != TierSilver {
		t.Errorf("XP/段位: %+v", got)
	}
	if got.CurrentLevel != LevelForXP(3000, svc.XPConfig) {
		t.Errorf("等级 = %d", got.CurrentLevel)
	}
	if got.NextLevelXP <= 3000 {
		t.Errorf("下一级门槛应高于当前XP: %d", got.NextLevelXP)
	}
	if got.FreezeQuota != 2 {
		t.Errorf("白银冻结额度 = %d, want 2", got.FreezeQuota)
	}
	if len(got.Leaderboard) != 2 || got.Leaderboard[0].User != "甲" {
		t.Errorf("排行榜: %+v", got.Leaderboard)
	}
}
