package dto

import "time"

// VoteRequest 投票请求（+1 赞成 / -1 反对，重复投同向票即撤销）
type VoteRequest struct {
	VoteType int16 `json:"vote_type" binding:"required,oneof=1 -1"`
}

// VoteResult 投票切换结果
type VoteResult struct {
	CommentID  int64 `json:"comment_id"`
	State      int16 `json:"state"` // 切换后的状态，0 表示无投票
	Upvotes    int64 `json:"upvotes"`
	Downvotes  int64 `json:"downvotes"`
	TotalVotes int64 `json:"total_votes"`
}

// MyVoteData 当前用户对某条评论的投票状态
type MyVoteData struct {
	CommentID int64      `json:"comment_id"`
	VoteType  int16      `json:"vote_type"` // 0 表示无投票
	VotedAt   *time.Time `json:"voted_at,omitempty"`
}

// VoterInfo 投票人信息
type VoterInfo struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar,omitempty"`
	VoteType int16     `json:"vote_type"`
	VotedAt  time.Time `json:"voted_at"`
}

// VoterListData 投票人列表数据
type VoterListData struct {
	Voters     []VoterInfo `json:"voters"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
}
