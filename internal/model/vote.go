package model

import "time"

// 投票类型（无记录即中立）
const (
	VoteUp   int16 = 1
	VoteDown int16 = -1
)

// Vote 投票模型，(comment_id, user_id) 唯一
// 生命周期完全由投票服务的三态切换机管理：
// NONE→UP→NONE、NONE→DOWN→NONE、UP↔DOWN 直接切换
type Vote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:投票记录ID" json:"id"`
	CommentID int64     `gorm:"not null;uniqueIndex:uq_comment_user_vote;index:idx_votes_comment_id;comment:被投票评论ID" json:"comment_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_comment_user_vote;index:idx_votes_user_id;comment:投票用户ID" json:"user_id"`
	VoteType  int16     `gorm:"not null;comment:投票类型（+1赞成/-1反对）" json:"vote_type"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:投票时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Comment Comment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
}

func (Vote) TableName() string {
	return "votes"
}
