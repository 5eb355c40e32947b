package model

import "time"

// 写操作动作类型（同时作为限流键，未配置预算的动作不限流）
const (
	ActionComment    = "comment"
	ActionVote       = "vote"
	ActionDelete     = "delete"
	ActionEdit       = "edit"
	ActionReport     = "report"
	ActionWarn       = "warn"
	ActionBan        = "ban"
	ActionTag        = "tag"
	ActionRoleChange = "role_change"
)

// RateLimitWindow 滑动窗口限流计数，(user_id, action_type, window_start) 唯一
// 过期窗口在写入路径上惰性清理
type RateLimitWindow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;comment:窗口记录ID" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:uq_user_action_window;comment:用户ID" json:"user_id"`
	ActionType  string    `gorm:"size:32;not null;uniqueIndex:uq_user_action_window;comment:动作类型" json:"action_type"`
	WindowStart time.Time `gorm:"not null;uniqueIndex:uq_user_action_window;comment:窗口起始时间" json:"window_start"`
	WindowEnd   time.Time `gorm:"not null;index:idx_rate_limit_window_end;comment:窗口结束时间" json:"window_end"`
	Count       int       `gorm:"not null;default:0;comment:窗口内动作计数" json:"count"`
}

func (RateLimitWindow) TableName() string {
	return "rate_limit_windows"
}
