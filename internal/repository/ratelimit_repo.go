package repository

import (
	"errors"
	"time"

	"remark-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 窗口按分钟分桶，每个桶存活完整窗口时长，
// 存活桶的计数之和即滑动窗口内的动作数（分钟级精度）
const bucketResolution = time.Minute

type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// PurgeExpired 惰性清理已结束的窗口
func (r *RateLimitRepository) PurgeExpired(userID int64, action string, now time.Time) error {
	return r.db.Where("user_id = ? AND action_type = ? AND window_end <= ?", userID, action, now).
		Delete(&model.RateLimitWindow{}).Error
}

// SumLive 统计仍在存活期内的窗口计数之和
func (r *RateLimitRepository) SumLive(userID int64, action string, now time.Time) (int, error) {
	var sum *int
	err := r.db.Model(&model.RateLimitWindow{}).
		Where("user_id = ? AND action_type = ? AND window_end > ?", userID, action, now).
		Select("SUM(count)").Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// EarliestExpiry 返回最早到期的存活窗口结束时间（重试提示的依据）
func (r *RateLimitRepository) EarliestExpiry(userID int64, action string, now time.Time) (*time.Time, error) {
	var window model.RateLimitWindow
	err := r.db.Where("user_id = ? AND action_type = ? AND window_end > ?", userID, action, now).
		Order("window_end ASC").First(&window).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &window.WindowEnd, nil
}

// Increment 原子地插入或累加当前分钟桶的计数
// 必须是 insert-or-increment 而不是读改写，否则并发请求会同时通过检查
func (r *RateLimitRepository) Increment(userID int64, action string, now time.Time, window time.Duration) error {
	start := now.Truncate(bucketResolution)
	row := &model.RateLimitWindow{
		UserID:      userID,
		ActionType:  action,
		WindowStart: start,
		WindowEnd:   start.Add(window),
		Count:       1,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "action_type"}, {Name: "window_start"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("rate_limit_windows.count + 1"),
		}),
	}).Create(row).Error
}
