package dto

import "time"

// UserInfo 用户信息
type UserInfo struct {
	ID             int64     `json:"id"`
	ExternalID     int64     `json:"external_id"`
	DisplayName    string    `json:"display_name"`
	Avatar         *string   `json:"avatar,omitempty"`
	Role           string    `json:"role"`
	TotalUpvotes   int64     `json:"total_upvotes"`
	TotalDownvotes int64     `json:"total_downvotes"`
	RankScore      int       `json:"rank_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeaderboardData 声望排行榜
type LeaderboardData struct {
	Entries []LeaderboardEntryInfo `json:"entries"`
}

// LeaderboardEntryInfo 排行榜条目
type LeaderboardEntryInfo struct {
	UserID int64 `json:"user_id"`
	Score  int   `json:"score"`
}
