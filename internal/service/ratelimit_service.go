package service

import (
	"time"

	"remark-go/internal/config"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/pkg/logger"

	"go.uber.org/zap"
)

// 各动作的默认预算（窗口分钟数，封禁为每天）
var defaultBudgets = map[string]config.ActionBudget{
	model.ActionComment: {Limit: 5, WindowMinutes: 60},
	model.ActionVote:    {Limit: 20, WindowMinutes: 60},
	model.ActionDelete:  {Limit: 10, WindowMinutes: 60},
	model.ActionEdit:    {Limit: 15, WindowMinutes: 60},
	model.ActionReport:  {Limit: 10, WindowMinutes: 60},
	model.ActionWarn:    {Limit: 20, WindowMinutes: 60},
	model.ActionBan:     {Limit: 5, WindowMinutes: 24 * 60},
}

type RateLimitService struct {
	repo    *repository.RateLimitRepository
	budgets map[string]config.ActionBudget
}

func NewRateLimitService(repo *repository.RateLimitRepository, cfg *config.RateLimitConfig) *RateLimitService {
	budgets := make(map[string]config.ActionBudget, len(defaultBudgets))
	for action, budget := range defaultBudgets {
		budgets[action] = budget
	}
	if cfg != nil {
		for action, budget := range cfg.Budgets {
			if budget.Limit > 0 && budget.WindowMinutes > 0 {
				budgets[action] = budget
			}
		}
	}
	return &RateLimitService{repo: repo, budgets: budgets}
}

// Allow 滑动窗口检查：清理过期窗口、统计存活计数、达到预算即拒绝，
// 否则原子地插入或累加当前窗口计数
func (s *RateLimitService) Allow(userID int64, action string) error {
	budget, ok := s.budgets[action]
	if !ok {
		// 未配置预算的动作不限流
		return nil
	}

	now := time.Now()

	if err := s.repo.PurgeExpired(userID, action, now); err != nil {
		// 清理失败不阻塞主流程，过期窗口不计入存活统计
		logger.Warn("Rate limit purge failed",
			zap.Int64("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}

	used, err := s.repo.SumLive(userID, action, now)
	if err != nil {
		return err
	}

	if used >= budget.Limit {
		retryAfter := budget.Window()
		if expiry, err := s.repo.EarliestExpiry(userID, action, now); err == nil && expiry != nil {
			retryAfter = expiry.Sub(now)
		}
		return &RateLimitedError{Action: action, RetryAfter: retryAfter}
	}

	return s.repo.Increment(userID, action, now, budget.Window())
}

// ActionStatus 单个动作的限流状态
type ActionStatus struct {
	Action    string     `json:"action"`
	Limit     int        `json:"limit"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	ResetAt   *time.Time `json:"reset_at"`
}

// Status 查询用户各动作的剩余预算
func (s *RateLimitService) Status(userID int64) ([]ActionStatus, error) {
	now := time.Now()
	actions := []string{
		model.ActionComment, model.ActionVote, model.ActionDelete,
		model.ActionEdit, model.ActionReport, model.ActionWarn, model.ActionBan,
	}

	statuses := make([]ActionStatus, 0, len(actions))
	for _, action := range actions {
		budget, ok := s.budgets[action]
		if !ok {
			continue
		}
		used, err := s.repo.SumLive(userID, action, now)
		if err != nil {
			return nil, err
		}
		remaining := budget.Limit - used
		if remaining < 0 {
			remaining = 0
		}
		status := ActionStatus{
			Action:    action,
			Limit:     budget.Limit,
			Used:      used,
			Remaining: remaining,
		}
		if expiry, err := s.repo.EarliestExpiry(userID, action, now); err == nil {
			status.ResetAt = expiry
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
