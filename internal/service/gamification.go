package service

import (
	"math"
	"sort"
	"time"
)

// 纯函数评分内核：XP、等级、连续学习天数。无副作用、无I/O，
// 供测评、路径、签到各处复用。

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

const (
	tierSilverXP   = 2500
	tierGoldXP     = 7500
	tierPlatinumXP = 15000
)

// XPConfig XP与等级计算的参数集合
type XPConfig struct {
	BaseXP                int                // 第一次答对的基础XP
	SecondAttemptFactor   float64            // 第二次答对的折扣系数
	DifficultyMultipliers map[string]float64 // 难度系数，未配置的难度按1.0
	TypeMultipliers       map[string]float64 // 题型系数，未配置的题型按1.0
	LevelBaseIncrement    float64            // 等级三角级数的基数
}

func DefaultXPConfig() XPConfig {
	return XPConfig{
		BaseXP:              10,
		SecondAttemptFactor: 0.5,
		DifficultyMultipliers: map[string]float64{
			"easy":   1.0,
			"medium": 1.5,
			"hard":   2.0,
		},
		TypeMultipliers: map[string]float64{
			"mcq":  1.0,
			"text": 1.2,
		},
		LevelBaseIncrement: 100,
	}
}

// XPForAttempt 单次作答的XP：第一次答对得全额，第二次按折扣系数，
// 第三次及以后或任何一次答错均为0
func XPForAttempt(attemptNumber int, isCorrect bool, difficulty, questionType string, cfg XPConfig) int {
	if !isCorrect || attemptNumber >= 3 || attemptNumber < 1 {
		return 0
	}

	xp := float64(cfg.BaseXP)
	if m, ok := cfg.DifficultyMultipliers[difficulty]; ok {
		xp *= m
	}
	if m, ok := cfg.TypeMultipliers[questionType]; ok {
		xp *= m
	}
	if attemptNumber == 2 {
		xp *= cfg.SecondAttemptFactor
	}

	return int(math.Round(xp))
}

// XPForLevel 达到等级L所需的总XP：round(base * (L*(L+1)/2 - 1))，L<=1 时为 0
func XPForLevel(level int, cfg XPConfig) int {
	if level <= 1 {
		return 0
	}
	l := float64(level)
	return int(math.Round(cfg.LevelBaseIncrement * (l*(l+1)/2 - 1)))
}

// LevelForXP 满足门槛的最大等级，最低为1级。对totalXP单调不减
func LevelForXP(totalXP int, cfg XPConfig) int {
	level := 1
	for XPForLevel(level+1, cfg) <= totalXP {
		level++
	}
	return level
}

// TierForXP 总XP对应的段位
func TierForXP(totalXP int) Tier {
	switch {
	case totalXP >= tierPlatinumXP:
		return TierPlatinum
	case totalXP >= tierGoldXP:
		return TierGold
	case totalXP >= tierSilverXP:
		return TierSilver
	default:
		return TierBronze
	}
}

// FreezeAllowance 段位对应的冻结额度：青铜1天，白银及以上2天。
// 总XP达到15000时即使段位字段异常也按2天处理
func FreezeAllowance(tier Tier, totalXP int) int {
	if totalXP >= tierPlatinumXP {
		return 2
	}
	if tier == TierBronze {
		return 1
	}
	return 2
}

// StreakWithFreezes 从最近一个有学习记录的日期向前逐天回溯：
// 出勤日计入连续天数；缺勤日消耗一个冻结额度后同样计入；
// 冻结额度用尽后遇到缺勤日即停止。冻结只用于已出勤日之间的空档，
// 不会延伸到最早一次出勤之前
func StreakWithFreezes(presence []time.Time, freezes int) int {
	if len(presence) == 0 {
		return 0
	}

	set := make(map[int64]bool, len(presence))
	for _, d := range presence {
		set[dayNumber(d)] = true
	}

	days := make([]int64, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	earliest := days[0]
	cur := days[len(days)-1]
	streak := 1

	for cur > earliest {
		next := cur - 1
		if set[next] {
			streak++
		} else if freezes > 0 {
			freezes--
			streak++
		} else {
			break
		}
		cur = next
	}

	return streak
}

func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
