package dto

import "time"

// CommentCreateRequest 发表评论请求
type CommentCreateRequest struct {
	MediaID   int64  `json:"media_id" binding:"required"`
	MediaType string `json:"media_type" binding:"required,max=32"`
	Content   string `json:"content" binding:"required"`
	ParentID  *int64 `json:"parent_id"`
}

// CommentEditRequest 编辑评论请求
type CommentEditRequest struct {
	Content string  `json:"content" binding:"required"`
	Reason  *string `json:"reason"`
}

// CommentDeleteRequest 删除评论请求
type CommentDeleteRequest struct {
	Reason *string `json:"reason"`
}

// CommentTagRequest 打标签请求
type CommentTagRequest struct {
	TagType string     `json:"tag_type" binding:"required"`
	Expires *time.Time `json:"expires"`
}

// TagInfo 标签信息
type TagInfo struct {
	TagType   string     `json:"tag_type"`
	TaggerID  int64      `json:"tagger_id"`
	Expires   *time.Time `json:"expires"`
	CreatedAt time.Time  `json:"created_at"`
}

// CommentInfo 评论信息（已删除评论的内容对外展示为占位文本）
type CommentInfo struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Username     *string       `json:"username,omitempty"`
	Avatar       *string       `json:"avatar,omitempty"`
	MediaID      int64         `json:"media_id"`
	MediaType    string        `json:"media_type"`
	ParentID     *int64        `json:"parent_id"`
	RootID       *int64        `json:"root_id"`
	DepthLevel   int           `json:"depth_level"`
	Content      string        `json:"content"`
	Upvotes      int64         `json:"upvotes"`
	Downvotes    int64         `json:"downvotes"`
	TotalVotes   int64         `json:"total_votes"`
	IsDeleted    bool          `json:"is_deleted"`
	IsEdited     bool          `json:"is_edited"`
	IsPinned     bool          `json:"is_pinned"`
	PinExpires   *time.Time    `json:"pin_expires,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	RepliesCount int64         `json:"replies_count"`
	Replies      []CommentInfo `json:"replies,omitempty"`
}

// CommentListData 评论列表数据
type CommentListData struct {
	Comments   []CommentInfo `json:"comments"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

// ThreadData 评论线程数据（嵌套回复）
type ThreadData struct {
	Comment  CommentInfo `json:"comment"`
	MaxDepth int         `json:"max_depth"`
}

// EditRecordInfo 编辑历史条目（编辑前的内容快照）
type EditRecordInfo struct {
	Content  string    `json:"content"`
	Reason   *string   `json:"reason"`
	EditedAt time.Time `json:"edited_at"`
}
