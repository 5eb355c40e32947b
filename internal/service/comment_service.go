package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"remark-go/internal/api/dto"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	userRepo    *repository.UserRepository
	moderation  *ModerationService
	reputation  *ReputationService
	rateLimit   *RateLimitService
	cache       *CacheService
	audit       *AuditService
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	moderation *ModerationService,
	reputation *ReputationService,
	rateLimit *RateLimitService,
	cache *CacheService,
	audit *AuditService,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		moderation:  moderation,
		reputation:  reputation,
		rateLimit:   rateLimit,
		cache:       cache,
		audit:       audit,
	}
}

// Create 发表评论
// 深度与根评论在此一次性计算，之后不再变更；
// 允许回复已删除的评论，保持对话的连续性
func (s *CommentService) Create(userID int64, req *dto.CommentCreateRequest) (*dto.CommentInfo, error) {
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.rateLimit.Allow(userID, model.ActionComment); err != nil {
		return nil, err
	}
	if err := s.moderation.EnsureCanWrite(user, model.ActionComment); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:    userID,
		MediaID:   req.MediaID,
		MediaType: req.MediaType,
		Content:   req.Content,
		ParentID:  req.ParentID,
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.MediaID != req.MediaID || parent.MediaType != req.MediaType {
			return nil, ErrParentMediaMismatch
		}
		depth := parent.DepthLevel + 1
		if depth > model.MaxDepthLevel {
			return nil, ErrDepthLimitExceeded
		}
		comment.DepthLevel = depth
		if parent.RootID != nil {
			comment.RootID = parent.RootID
		} else {
			comment.RootID = &parent.ID
		}
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	s.invalidateMedia(req.MediaType, req.MediaID)

	// 声望重算失败不回滚主写入
	if err := s.reputation.Recompute(userID); err != nil {
		logger.Warn("Reputation recompute failed after comment",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	s.audit.Record(userID, AuditActionCommentCreate, AuditTargetComment, comment.ID, req.MediaType)

	return s.toCommentInfo(comment, 0), nil
}

// SoftDelete 软删除评论：子评论保持可见且父链接不变，楼层结构不因删除断裂
func (s *CommentService) SoftDelete(commentID, actorID int64, reason *string) error {
	actor, err := s.userRepo.GetByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.rateLimit.Allow(actorID, model.ActionDelete); err != nil {
		return err
	}
	if err := s.moderation.EnsureCanWrite(actor, model.ActionDelete); err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.IsDeleted {
		// 删除状态单调，不可重复删除也不可恢复
		return ErrCommentDeleted
	}

	author, err := s.userRepo.GetByID(comment.UserID)
	if err != nil {
		return err
	}
	if err := CanDeleteComment(actor, author, time.Now()); err != nil {
		return err
	}

	if err := s.commentRepo.SoftDelete(commentID, actorID, reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentDeleted
		}
		return err
	}

	s.invalidateMedia(comment.MediaType, comment.MediaID)

	detail := ""
	if reason != nil {
		detail = *reason
	}
	s.audit.Record(actorID, AuditActionCommentDelete, AuditTargetComment, commentID, detail)

	return nil
}

// Edit 编辑评论：仅限原作者、仅限未删除的评论
// 编辑前的内容连同时间与原因追加进编辑历史，历史只增不改
func (s *CommentService) Edit(commentID, actorID int64, req *dto.CommentEditRequest) (*dto.CommentInfo, error) {
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.rateLimit.Allow(actorID, model.ActionEdit); err != nil {
		return nil, err
	}
	if err := s.moderation.EnsureCanWrite(actor, model.ActionEdit); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}
	if comment.UserID != actorID {
		return nil, ErrNoPermission
	}

	if err := s.commentRepo.EditWithHistory(commentID, comment.Content, req.Content, req.Reason); err != nil {
		return nil, err
	}

	s.invalidateMedia(comment.MediaType, comment.MediaID)
	s.audit.Record(actorID, AuditActionCommentEdit, AuditTargetComment, commentID, "")

	updated, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return s.toCommentInfo(updated, 0), nil
}

// FetchThread 获取评论线程（嵌套回复）
// 用显式工作队列逐层展开而不是递归下降，深度预算与写入侧上限一致
func (s *CommentService) FetchThread(commentID int64, maxDepth int) (*dto.ThreadData, error) {
	if maxDepth < 0 || maxDepth > model.MaxDepthLevel {
		maxDepth = model.MaxDepthLevel
	}

	root, err := s.commentRepo.GetByIDWithUser(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	// 逐层抓取：frontier 为上一层的评论ID集合
	children := make(map[int64][]model.Comment)
	frontier := []int64{root.ID}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		replies, err := s.commentRepo.ListByParentIDs(frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, reply := range replies {
			children[*reply.ParentID] = append(children[*reply.ParentID], reply)
			frontier = append(frontier, reply.ID)
		}
	}

	info := s.assembleThread(root, children)
	return &dto.ThreadData{Comment: *info, MaxDepth: maxDepth}, nil
}

// FetchTopLevel 获取媒体下的顶层评论列表
// 已删除评论默认带占位内容返回，嵌套结构不因删除断裂；sort ∈ {newest, oldest, top}
func (s *CommentService) FetchTopLevel(mediaID int64, mediaType, sort string, page, pageSize int, includeDeleted bool) (*dto.CommentListData, error) {
	switch sort {
	case repository.SortNewest, repository.SortOldest, repository.SortTop:
	default:
		sort = repository.SortNewest
	}

	// 旁路缓存：键带媒体版本号，写入侧自增版本号即失效
	ctx := context.Background()
	var cacheKey string
	if s.cache != nil && includeDeleted {
		version := s.cache.MediaVersion(ctx, mediaType, mediaID)
		cacheKey = s.cache.PageKey(mediaType, mediaID, version, sort, page, pageSize)
		if data, err := s.cache.GetTopLevelPage(ctx, cacheKey); err == nil && data != nil {
			var cached dto.CommentListData
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	skip := (page - 1) * pageSize
	comments, total, err := s.commentRepo.ListTopLevel(mediaID, mediaType, sort, skip, pageSize, includeDeleted)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommentInfo, 0, len(comments))
	for i := range comments {
		repliesCount, _ := s.commentRepo.CountReplies(comments[i].ID)
		items = append(items, *s.toCommentInfo(&comments[i], repliesCount))
	}

	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}

	data := &dto.CommentListData{
		Comments:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	if s.cache != nil && cacheKey != "" {
		_ = s.cache.SetTopLevelPage(ctx, cacheKey, data)
	}

	return data, nil
}

// Tag 给评论打管理标签（幂等 upsert），PINNED 同步镜像到评论的置顶字段
func (s *CommentService) Tag(commentID, actorID int64, req *dto.CommentTagRequest) error {
	switch req.TagType {
	case model.TagSpoiler, model.TagWarning, model.TagPinned:
	default:
		return ErrInvalidTagType
	}

	actor, err := s.userRepo.GetByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// 先过状态闸门：封禁的版主同样不能打标签
	if err := s.moderation.EnsureCanWrite(actor, model.ActionTag); err != nil {
		return err
	}
	if model.RoleRank[actor.EffectiveRole(time.Now())] < model.RoleRank[model.RoleModerator] {
		return ErrNoPermission
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if err := s.commentRepo.UpsertTag(&model.CommentTag{
		CommentID: commentID,
		TagType:   req.TagType,
		TaggerID:  actorID,
		Expires:   req.Expires,
	}); err != nil {
		return err
	}

	if req.TagType == model.TagPinned {
		if err := s.commentRepo.SetPinned(commentID, true, req.Expires); err != nil {
			return err
		}
	}

	s.invalidateMedia(comment.MediaType, comment.MediaID)
	s.audit.Record(actorID, AuditActionCommentTag, AuditTargetComment, commentID, req.TagType)

	return nil
}

// ListEditHistory 获取评论的编辑历史
func (s *CommentService) ListEditHistory(commentID int64) ([]dto.EditRecordInfo, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	records, err := s.commentRepo.ListEditHistory(commentID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EditRecordInfo, 0, len(records))
	for _, record := range records {
		items = append(items, dto.EditRecordInfo{
			Content:  record.Content,
			Reason:   record.Reason,
			EditedAt: record.EditedAt,
		})
	}
	return items, nil
}

func (s *CommentService) assembleThread(root *model.Comment, children map[int64][]model.Comment) *dto.CommentInfo {
	info := s.toCommentInfo(root, int64(len(children[root.ID])))

	// 自顶向下组装，队列元素持有父 DTO 的回填位置
	type frame struct {
		parent *dto.CommentInfo
		nodes  []model.Comment
	}
	queue := []frame{{parent: info, nodes: children[root.ID]}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for i := range f.nodes {
			child := s.toCommentInfo(&f.nodes[i], int64(len(children[f.nodes[i].ID])))
			f.parent.Replies = append(f.parent.Replies, *child)
			attached := &f.parent.Replies[len(f.parent.Replies)-1]
			if grandchildren := children[f.nodes[i].ID]; len(grandchildren) > 0 {
				queue = append(queue, frame{parent: attached, nodes: grandchildren})
			}
		}
	}
	return info
}

func (s *CommentService) toCommentInfo(c *model.Comment, repliesCount int64) *dto.CommentInfo {
	content := c.Content
	if c.IsDeleted {
		content = model.DeletedContentMask
	}
	info := &dto.CommentInfo{
		ID:           c.ID,
		UserID:       c.UserID,
		MediaID:      c.MediaID,
		MediaType:    c.MediaType,
		ParentID:     c.ParentID,
		RootID:       c.RootID,
		DepthLevel:   c.DepthLevel,
		Content:      content,
		Upvotes:      c.Upvotes,
		Downvotes:    c.Downvotes,
		TotalVotes:   c.TotalVotes,
		IsDeleted:    c.IsDeleted,
		IsEdited:     c.IsEdited,
		IsPinned:     c.IsPinned,
		PinExpires:   c.PinExpires,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		RepliesCount: repliesCount,
	}
	if c.User.ID != 0 {
		info.Username = &c.User.DisplayName
		info.Avatar = c.User.Avatar
	}
	return info
}

func (s *CommentService) invalidateMedia(mediaType string, mediaID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMedia(context.Background(), mediaType, mediaID); err != nil {
		logger.Warn("Comment cache invalidate failed",
			zap.String("media_type", mediaType),
			zap.Int64("media_id", mediaID),
			zap.Error(err),
		)
	}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return fmt.Errorf("%w（最多 %d 字符）", ErrContentTooLong, model.MaxContentLength)
	}
	return nil
}
