package model

import "time"

// MaxDepthLevel 评论嵌套深度上限（顶层为 0）
const MaxDepthLevel = 20

// MaxContentLength 评论内容最大长度（字符数）
const MaxContentLength = 2000

// DeletedContentMask 软删除后对外展示的内容占位
const DeletedContentMask = "[该评论已删除]"

// 评论标签类型
const (
	TagSpoiler = "SPOILER"
	TagWarning = "WARNING"
	TagPinned  = "PINNED"
)

// Comment 评论模型
// 深度与根评论在创建时一次性计算，之后不再变更；删除为软删除，
// 子评论的父链接永不改写，保证楼层结构完整
type Comment struct {
	ID           int64      `gorm:"primaryKey;autoIncrement;comment:评论ID" json:"id"`
	UserID       int64      `gorm:"not null;index:idx_comments_user_id;comment:评论用户ID" json:"user_id"`
	MediaID      int64      `gorm:"not null;index:idx_comments_media,priority:1;comment:媒体ID" json:"media_id"`
	MediaType    string     `gorm:"size:32;not null;index:idx_comments_media,priority:2;comment:媒体类型" json:"media_type"`
	ParentID     *int64     `gorm:"index:idx_comments_parent_id;comment:父评论ID（空表示顶层）" json:"parent_id"`
	RootID       *int64     `gorm:"index:idx_comments_root_id;comment:顶层祖先评论ID（顶层为空）" json:"root_id"`
	DepthLevel   int        `gorm:"not null;default:0;comment:嵌套深度（顶层为0）" json:"depth_level"`
	Content      string     `gorm:"type:text;not null;comment:评论内容" json:"content"`
	Upvotes      int64      `gorm:"not null;default:0;comment:赞成票数（由投票表重算）" json:"upvotes"`
	Downvotes    int64      `gorm:"not null;default:0;comment:反对票数（由投票表重算）" json:"downvotes"`
	TotalVotes   int64      `gorm:"not null;default:0;comment:总票数（由投票表重算）" json:"total_votes"`
	IsDeleted    bool       `gorm:"not null;default:false;index:idx_comments_is_deleted;comment:软删除标识" json:"is_deleted"`
	DeletedBy    *int64     `gorm:"comment:执行删除的用户ID" json:"deleted_by"`
	DeleteReason *string    `gorm:"size:500;comment:删除原因" json:"delete_reason"`
	IsEdited     bool       `gorm:"not null;default:false;comment:是否编辑过" json:"is_edited"`
	IsPinned     bool       `gorm:"not null;default:false;comment:是否置顶" json:"is_pinned"`
	PinExpires   *time.Time `gorm:"comment:置顶到期时间" json:"pin_expires"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index:idx_comments_created_at;comment:评论时间" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	User        User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Parent      *Comment            `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Replies     []Comment           `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	EditHistory []CommentEditRecord `gorm:"foreignKey:CommentID" json:"edit_history,omitempty"`
	Tags        []CommentTag        `gorm:"foreignKey:CommentID" json:"tags,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentEditRecord 编辑历史快照（只追加，写入后不再修改）
// 记录的是编辑前的内容
type CommentEditRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:编辑记录ID" json:"id"`
	CommentID int64     `gorm:"not null;index:idx_edit_records_comment_id;comment:评论ID" json:"comment_id"`
	Content   string    `gorm:"type:text;not null;comment:编辑前的内容" json:"content"`
	Reason    *string   `gorm:"size:500;comment:编辑原因" json:"reason"`
	EditedAt  time.Time `gorm:"autoCreateTime;comment:编辑时间" json:"edited_at"`
}

func (CommentEditRecord) TableName() string {
	return "comment_edit_records"
}

// CommentTag 评论标签，同一评论同一类型唯一（幂等 upsert）
type CommentTag struct {
	ID        int64      `gorm:"primaryKey;autoIncrement;comment:标签ID" json:"id"`
	CommentID int64      `gorm:"not null;uniqueIndex:uq_comment_tag;comment:评论ID" json:"comment_id"`
	TagType   string     `gorm:"size:32;not null;uniqueIndex:uq_comment_tag;comment:标签类型" json:"tag_type"`
	TaggerID  int64      `gorm:"not null;comment:打标签的用户ID" json:"tagger_id"`
	Expires   *time.Time `gorm:"comment:标签到期时间" json:"expires"`
	CreatedAt time.Time  `gorm:"autoCreateTime;comment:创建时间" json:"created_at"`
}

func (CommentTag) TableName() string {
	return "comment_tags"
}
