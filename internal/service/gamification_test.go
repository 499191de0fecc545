package service

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func TestXPForAttempt(t *testing.T) {
	cfg := DefaultXPConfig()

	tests := []struct {
		name       string
		attempt    int
		correct    bool
		difficulty string
		qType      string
		want       int
	}{
		{"首次答对基础题", 1, true, "easy", "mcq", 10},
		{"首次答对中等题", 1, true, "medium", "mcq", 15},
		{"首次答对困难文本题", 1, true, "hard", "text", 24},
		{"二次答对减半", 2, true, "easy", "mcq", 5},
		{"二次答对中等题四舍五入", 2, true, "medium", "mcq", 8},
		{"三次答对无XP", 3, true, "easy", "mcq", 0},
		{"答错无XP", 1, false, "hard", "text", 0},
		{"非法次数无XP", 0, true, "easy", "mcq", 0},
		{"未知难度按1.0", 1, true, "unknown", "mcq", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := XPForAttempt(tt.attempt, tt.correct, tt.difficulty, tt.qType, cfg)
			if got != tt.want {
				t.Errorf("XPForAttempt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestXPForLevel(t *testing.T) {
	cfg := DefaultXPConfig()

	tests := []struct {
		level int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 200},
		{3, 500},
		{4, 900},
		{5, 1400},
	}

	for _, tt := range tests {
		if got := XPForLevel(tt.level, cfg); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	cfg := DefaultXPConfig()

	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{199, 1},
		{200, 2},
		{499, 2},
		{500, 3},
		{10000, 13},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp, cfg); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}

	// 等级对XP单调不减
	prev := 0
	for xp := 0; xp <= 20000; xp += 137 {
		level := LevelForXP(xp, cfg)
		if level < prev {
			t.Fatalf("LevelForXP 非单调: xp=%d level=%d prev=%d", xp, level, prev)
		}
		prev = level
	}
}

func TestLevelXPRoundtrip(t *testing.T) {
	cfg := DefaultXPConfig()

	// 恰好达到门槛的XP必须换算回同一等级
	for level := 1; level <= 30; level++ {
		threshold := XPForLevel(level, cfg)
		if got := LevelForXP(threshold, cfg); got != level {
			t.Errorf("LevelForXP(XPForLevel(%d)=%d) = %d", level, threshold, got)
		}
	}
}

func TestTierForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want Tier
	}{
		{0, TierBronze},
		{2499, TierBronze},
		{2500, TierSilver},
		{7499, TierSilver},
		{7500, TierGold},
		{14999, TierGold},
		{15000, TierPlatinum},
	}

	for _, tt := range tests {
		if got := TierForXP(tt.xp); got != tt.want {
			t.Errorf("TierForXP(%d) = %s, want %s", tt.xp, got, tt.want)
		}
	}
}

func TestFreezeAllowance(t *testing.T) {
	if got := FreezeAllowance(TierBronze, 100); got != 1 {
		t.Errorf("青铜冻结额度 = %d, want 1", got)
	}
	if got := FreezeAllowance(TierSilver, 3000); got != 2 {
		t.Errorf("白银冻结额度 = %d, want 2", got)
	}
	if got := FreezeAllowance(TierBronze, 15000); got != 2 {
		t.Errorf("XP达标时冻结额度 = %d, want 2", got)
	}
}

func TestStreakWithFreezes(t *testing.T) {
	tests := []struct {
		name     string
		presence []time.Time
		freezes  int
		want     int
	}{
		{"无记录", nil, 2, 0},
		{"单日", []time.Time{day(1)}, 2, 1},
		{"连续三天", []time.Time{day(1), day(2), day(3)}, 0, 3},
		{"隔一天一个冻结补上", []time.Time{day(1), day(3)}, 1, 3},
		{"隔一天无冻结断开", []time.Time{day(1), day(3)}, 0, 1},
		{"两个空档两个冻结", []time.Time{day(1), day(2), day(4), day(5)}, 2, 5},
		{"两个空档一个冻结只补最近的", []time.Time{day(1), day(3), day(5)}, 1, 3},
		{"冻结不延伸到最早出勤之前", []time.Time{day(5), day(6)}, 2, 2},
		{"同日多次记录只算一天", []time.Time{day(1), day(1), day(2)}, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StreakWithFreezes(tt.presence, tt.freezes); got != tt.want {
				t.Errorf("StreakWithFreezes() = %d, want %d", got, tt.want)
			}
		})
	}
}
