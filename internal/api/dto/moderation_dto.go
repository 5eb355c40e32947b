package dto

import "time"

// WarnRequest 警告请求
type WarnRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// BanRequest 封禁请求，expires 为空表示永久
type BanRequest struct {
	Reason  string     `json:"reason" binding:"required,max=500"`
	Expires *time.Time `json:"expires"`
}

// ShadowBanRequest 影子封禁请求
type ShadowBanRequest struct {
	Reason  string     `json:"reason" binding:"required,max=500"`
	Expires *time.Time `json:"expires"`
}

// RoleChangeRequest 角色变更请求
type RoleChangeRequest struct {
	NewRole string `json:"new_role" binding:"required"`
	Reason  string `json:"reason" binding:"max=500"`
}

// ReportRequest 举报请求
type ReportRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// WarningInfo 警告记录
type WarningInfo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	IssuedBy  int64     `json:"issued_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// WarningListData 警告记录列表
type WarningListData struct {
	Warnings   []WarningInfo `json:"warnings"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

// ModerationStateInfo 管理操作后的用户状态
type ModerationStateInfo struct {
	UserID       int64      `json:"user_id"`
	Role         string     `json:"role"`
	IsBanned     bool       `json:"is_banned"`
	BanExpires   *time.Time `json:"ban_expires,omitempty"`
	ShadowBanned bool       `json:"shadow_banned"`
	IsMuted      bool       `json:"is_muted"`
	MuteExpires  *time.Time `json:"mute_expires,omitempty"`
	WarningCount int        `json:"warning_count"`
	TotalWarns   int        `json:"total_warns"`
}
