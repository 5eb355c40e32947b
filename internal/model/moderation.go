package model

import "time"

// Warning 警告记录（只追加的审计数据，不可修改）
type Warning struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:警告记录ID" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_warnings_user_id;comment:被警告用户ID" json:"user_id"`
	IssuedBy  int64     `gorm:"not null;comment:执行警告的用户ID" json:"issued_by"`
	Reason    string    `gorm:"size:500;not null;comment:警告原因" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:警告时间" json:"created_at"`
}

func (Warning) TableName() string {
	return "warnings"
}

// Ban 封禁记录（只追加，解除通过用户状态位，不回改记录）
type Ban struct {
	ID        int64      `gorm:"primaryKey;autoIncrement;comment:封禁记录ID" json:"id"`
	UserID    int64      `gorm:"not null;index:idx_bans_user_id;comment:被封禁用户ID" json:"user_id"`
	IssuedBy  int64      `gorm:"not null;comment:执行封禁的用户ID" json:"issued_by"`
	Reason    string     `gorm:"size:500;not null;comment:封禁原因" json:"reason"`
	ExpiresAt *time.Time `gorm:"comment:封禁到期时间（空为永久）" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;comment:封禁时间" json:"created_at"`
}

func (Ban) TableName() string {
	return "bans"
}

// ShadowBan 影子封禁记录（只追加）
type ShadowBan struct {
	ID        int64      `gorm:"primaryKey;autoIncrement;comment:影子封禁记录ID" json:"id"`
	UserID    int64      `gorm:"not null;index:idx_shadow_bans_user_id;comment:被影子封禁用户ID" json:"user_id"`
	IssuedBy  int64      `gorm:"not null;comment:执行影子封禁的用户ID" json:"issued_by"`
	Reason    string     `gorm:"size:500;not null;comment:影子封禁原因" json:"reason"`
	ExpiresAt *time.Time `gorm:"comment:影子封禁到期时间（空为永久）" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;comment:影子封禁时间" json:"created_at"`
}

func (ShadowBan) TableName() string {
	return "shadow_bans"
}

// RoleChange 角色变更记录（只追加）
type RoleChange struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:角色变更记录ID" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_role_changes_user_id;comment:被变更用户ID" json:"user_id"`
	ChangedBy int64     `gorm:"not null;comment:执行变更的用户ID" json:"changed_by"`
	OldRole   string    `gorm:"size:32;not null;comment:变更前角色" json:"old_role"`
	NewRole   string    `gorm:"size:32;not null;comment:变更后角色" json:"new_role"`
	Reason    string    `gorm:"size:500;comment:变更原因" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:变更时间" json:"created_at"`
}

func (RoleChange) TableName() string {
	return "role_changes"
}

// Report 举报记录，同一举报人对同一评论仅能举报一次
type Report struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;comment:举报记录ID" json:"id"`
	CommentID  int64     `gorm:"not null;uniqueIndex:uq_comment_reporter;index:idx_reports_comment_id;comment:被举报评论ID" json:"comment_id"`
	ReporterID int64     `gorm:"not null;uniqueIndex:uq_comment_reporter;comment:举报人ID" json:"reporter_id"`
	Reason     string    `gorm:"size:500;not null;comment:举报原因" json:"reason"`
	CreatedAt  time.Time `gorm:"autoCreateTime;comment:举报时间" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
