package service

import (
	"errors"
	"fmt"
	"time"
)

// 本层错误都是终结性的：核心不做任何自动重试，是否重试由调用方决定
var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrParentNotFound      = errors.New("父评论不存在")
	ErrParentMediaMismatch = errors.New("父评论不属于该媒体")
	ErrDepthLimitExceeded  = errors.New("评论嵌套深度超过上限")
	ErrCommentDeleted      = errors.New("评论已删除，无法操作")
	ErrContentEmpty        = errors.New("评论内容不能为空")
	ErrContentTooLong      = errors.New("评论内容超过长度上限")
	ErrNoPermission        = errors.New("没有权限执行该操作")
	ErrSelfModeration      = errors.New("不能对自己执行管理操作")
	ErrDuplicateReport     = errors.New("您已经举报过该评论了")
	ErrInvalidVoteType     = errors.New("无效的投票类型")
	ErrInvalidTagType      = errors.New("无效的标签类型")
	ErrInvalidRole         = errors.New("无效的角色")
	ErrInvalidCredential   = errors.New("无效的身份凭证")
)

// RateLimitedError 触发限流，携带动作与重试提示
type RateLimitedError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("操作过于频繁（%s），请在 %d 秒后重试", e.Action, int(e.RetryAfter.Seconds()))
}

// MutedError 用户处于禁言状态
type MutedError struct {
	Until time.Time
}

func (e *MutedError) Error() string {
	return fmt.Sprintf("您已被禁言，解除时间：%s", e.Until.Format(time.RFC3339))
}

// BannedError 用户处于封禁状态，Until 为空表示永久封禁
type BannedError struct {
	Until *time.Time
}

func (e *BannedError) Error() string {
	if e.Until == nil {
		return "您已被永久封禁"
	}
	return fmt.Sprintf("您已被封禁，解除时间：%s", e.Until.Format(time.RFC3339))
}
