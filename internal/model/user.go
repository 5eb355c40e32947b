package model

import "time"

// 用户角色，权限严格由低到高排序
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// RoleRank 角色权限等级，数值越大权限越高
var RoleRank = map[string]int{
	RoleUser:       0,
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// User 用户模型（首次见到外部身份时 upsert 创建）
type User struct {
	ID               int64      `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	ExternalID       int64      `gorm:"not null;uniqueIndex;comment:身份提供方颁发的外部ID" json:"external_id"`
	DisplayName      string     `gorm:"size:255;not null;comment:显示名称" json:"display_name"`
	Avatar           *string    `gorm:"size:500;comment:用户头像" json:"avatar"`
	Role             string     `gorm:"size:32;not null;default:'user';comment:用户角色" json:"role"`
	IsBanned         bool       `gorm:"not null;default:false;comment:封禁标识" json:"is_banned"`
	BanExpires       *time.Time `gorm:"comment:封禁到期时间" json:"ban_expires"`
	ShadowBanned     bool       `gorm:"not null;default:false;comment:影子封禁标识" json:"shadow_banned"`
	ShadowBanExpires *time.Time `gorm:"comment:影子封禁到期时间" json:"shadow_ban_expires"`
	IsMuted          bool       `gorm:"not null;default:false;comment:禁言标识" json:"is_muted"`
	MuteExpires      *time.Time `gorm:"comment:禁言到期时间" json:"mute_expires"`
	WarningCount     int        `gorm:"not null;default:0;comment:当前有效警告次数（可重置）" json:"warning_count"`
	TotalWarns       int        `gorm:"not null;default:0;comment:累计警告次数（只增不减）" json:"total_warns"`
	TotalUpvotes     int64      `gorm:"not null;default:0;comment:名下评论累计获得的赞成票" json:"total_upvotes"`
	TotalDownvotes   int64      `gorm:"not null;default:0;comment:名下评论累计获得的反对票" json:"total_downvotes"`
	RankScore        int        `gorm:"not null;default:0;comment:声望分（0-100，派生数据）" json:"rank_score"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Comments []Comment `gorm:"foreignKey:UserID" json:"comments,omitempty"`
	Votes    []Vote    `gorm:"foreignKey:UserID" json:"votes,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// EffectiveRole 权限判定使用的有效角色：影子封禁期间按普通用户处理
func (u *User) EffectiveRole(now time.Time) string {
	if u.ShadowBanned && (u.ShadowBanExpires == nil || u.ShadowBanExpires.After(now)) {
		return RoleUser
	}
	return u.Role
}
