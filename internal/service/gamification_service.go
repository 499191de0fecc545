package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"time"
)

// GamificationService 对外暴露XP/等级/段位/连续学习天数的聚合视图，
// 并负责签到与XP发放
type GamificationService struct {
	UserRepo    *repository.UserRepository
	CheckinRepo *repository.CheckinRepository
	XPConfig    XPConfig
}

func NewGamificationService(userRepo *repository.UserRepository, checkinRepo *repository.CheckinRepository) *GamificationService {
	return &GamificationService{
		UserRepo:    userRepo,
		CheckinRepo: checkinRepo,
		XPConfig:    DefaultXPConfig(),
	}
}

// 连续天数回溯的日历窗口。更早的出勤对当前连续天数不可能再有贡献
const streakLookbackDays = 366

type UserAchievements struct {
	TotalXP      int                `json:"totalXp"`
	CurrentLevel int                `json:"currentLevel"`
	NextLevelXP  int                `json:"nextLevelXp"`
	Tier         Tier               `json:"tier"`
	Streak       int                `json:"streak"`
	FreezeQuota  int                `json:"freezeQuota"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	User   string `json:"user"`
	XP     int    `json:"xp"`
	Avatar string `json:"avatar,omitempty"`
}

func (s *GamificationService) GetUserAchievements(userID uint) (*UserAchievements, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	streak, err := s.CurrentStreak(userID, user.XP)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.GetLeaderboard(10)
	if err != nil {
		return nil, err
	}

	level := LevelForXP(user.XP, s.XPConfig)
	tier := TierForXP(user.XP)

	return &UserAchievements{
		TotalXP:      user.XP,
		CurrentLevel: level,
		NextLevelXP:  XPForLevel(level+1, s.XPConfig),
		Tier:         tier,
		Streak:       streak,
		FreezeQuota:  FreezeAllowance(tier, user.XP),
		Leaderboard:  leaderboard,
	}, nil
}

// CurrentStreak 基于签到日历和段位冻结额度计算当前连续学习天数
func (s *GamificationService) CurrentStreak(userID uint, totalXP int) (int, error) {
	since := time.Now().AddDate(0, 0, -streakLookbackDays)
	checkins, err := s.CheckinRepo.ListSince(userID, since)
	if err != nil {
		return 0, err
	}

	presence := make([]time.Time, len(checkins))
	for i, c := range checkins {
		presence[i] = c.CheckinAt
	}

	freezes := FreezeAllowance(TierForXP(totalXP), totalXP)
	return StreakWithFreezes(presence, freezes), nil
}

func (s *GamificationService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		leaderboard[i] = LeaderboardEntry{
			Rank:   i + 1,
			User:   user.Name,
			XP:     user.XP,
			Avatar: user.Avatar,
		}
	}

	return leaderboard, nil
}

type CheckinResult struct {
	Streak    int       `json:"streak"`
	CheckinAt time.Time `json:"checkinAt"`
}

// Checkin 记录今日签到。重复签到返回业务错误而非静默成功
func (s *GamificationService) Checkin(userID uint) (*CheckinResult, error) {
	now := time.Now()
	if existing, err := s.CheckinRepo.FindByUserAndDate(userID, now); err == nil && existing != nil {
		return nil, util.ErrAlreadyCheckedIn
	}

	if err := s.CheckinRepo.Create(&model.Checkin{UserID: userID, CheckinAt: now}); err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	streak, err := s.CurrentStreak(userID, user.XP)
	if err != nil {
		return nil, err
	}

	return &CheckinResult{Streak: streak, CheckinAt: now}, nil
}

// AwardAttemptXP 按尝试次数发放作答XP并累加到用户
func (s *GamificationService) AwardAttemptXP(userID uint, attemptNumber int, isCorrect bool, difficulty, questionType string) (int, error) {
	xp := XPForAttempt(attemptNumber, isCorrect, difficulty, questionType, s.XPConfig)
	if xp == 0 {
		return 0, nil
	}
	if err := s.UserRepo.UpdateXP(userID, xp); err != nil {
		return 0, err
	}
	return xp, nil
}
