package repository

import (
	"time"

	"remark-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 评论排序方式
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTop    = "top"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) GetByIDWithUser(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// SoftDelete 软删除评论：仅置标记与删除信息，不级联、不改写子评论的父链接
// 已删除的评论不可再次删除（删除状态单调）
func (r *CommentRepository) SoftDelete(commentID, actorID int64, reason *string) error {
	result := r.db.Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", commentID, false).
		Updates(map[string]interface{}{
			"is_deleted":    true,
			"deleted_by":    actorID,
			"delete_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// EditWithHistory 编辑评论并在同一事务内追加编辑前快照
// 历史记录只追加，写入后不再修改
func (r *CommentRepository) EditWithHistory(commentID int64, oldContent, newContent string, reason *string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		record := &model.CommentEditRecord{
			CommentID: commentID,
			Content:   oldContent,
			Reason:    reason,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(&model.Comment{}).Where("id = ?", commentID).
			Updates(map[string]interface{}{
				"content":   newContent,
				"is_edited": true,
			}).Error
	})
}

// ListEditHistory 获取评论的编辑历史（按时间正序）
func (r *CommentRepository) ListEditHistory(commentID int64) ([]model.CommentEditRecord, error) {
	var records []model.CommentEditRecord
	err := r.db.Where("comment_id = ?", commentID).
		Order("edited_at ASC, id ASC").Find(&records).Error
	return records, err
}

// ListTopLevel 获取媒体下的顶层评论（支持排序与分页）
func (r *CommentRepository) ListTopLevel(mediaID int64, mediaType, sort string, skip, limit int, includeDeleted bool) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).
		Where("media_id = ? AND media_type = ? AND parent_id IS NULL", mediaID, mediaType)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch sort {
	case SortOldest:
		query = query.Order("created_at ASC, id ASC")
	case SortTop:
		query = query.Order("total_votes DESC").Order("created_at DESC, id DESC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	var comments []model.Comment
	err := query.Preload("User").Offset(skip).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListByParentIDs 批量获取一组父评论的直接回复（线程遍历的工作队列输入）
// 已删除的回复同样返回，嵌套结构不因删除断裂
func (r *CommentRepository) ListByParentIDs(parentIDs []int64) ([]model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	err := r.db.Where("parent_id IN ?", parentIDs).
		Order("created_at ASC, id ASC").
		Preload("User").Find(&comments).Error
	return comments, err
}

// CountReplies 统计某条评论的直接回复数
func (r *CommentRepository) CountReplies(commentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("parent_id = ?", commentID).Count(&count).Error
	return count, err
}

// UpsertTag 幂等写入评论标签，(comment_id, tag_type) 冲突时刷新打标人和到期时间
func (r *CommentRepository) UpsertTag(tag *model.CommentTag) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "comment_id"}, {Name: "tag_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tagger_id": tag.TaggerID,
			"expires":   tag.Expires,
		}),
	}).Create(tag).Error
}

// ListTags 获取评论的标签
func (r *CommentRepository) ListTags(commentID int64) ([]model.CommentTag, error) {
	var tags []model.CommentTag
	err := r.db.Where("comment_id = ?", commentID).Find(&tags).Error
	return tags, err
}

// SetPinned 同步置顶标签到评论本身的置顶字段
func (r *CommentRepository) SetPinned(commentID int64, pinned bool, expires *time.Time) error {
	return r.db.Model(&model.Comment{}).Where("id = ?", commentID).
		Updates(map[string]interface{}{
			"is_pinned":   pinned,
			"pin_expires": expires,
		}).Error
}
