package service

import (
	"context"
	"time"

	"remark-go/internal/infra/kafka"
	"remark-go/pkg/logger"

	"go.uber.org/zap"
)

// 审计动作
const (
	AuditActionCommentCreate = "comment.create"
	AuditActionCommentEdit   = "comment.edit"
	AuditActionCommentDelete = "comment.delete"
	AuditActionCommentTag    = "comment.tag"
	AuditActionVote          = "vote.cast"
	AuditActionWarn          = "moderation.warn"
	AuditActionBan           = "moderation.ban"
	AuditActionUnban         = "moderation.unban"
	AuditActionShadowBan     = "moderation.shadow_ban"
	AuditActionRoleChange    = "moderation.role_change"
	AuditActionReport        = "moderation.report"
)

// 审计目标类型
const (
	AuditTargetUser    = "user"
	AuditTargetComment = "comment"
)

// AuditService 审计事件的 fire-and-forget 发布
// 发布失败只记日志并丢弃，绝不作为主操作的错误向上传播
type AuditService struct {
	topic string
}

// NewAuditService topic 为空时审计发布整体退化为 no-op
func NewAuditService(topic string) *AuditService {
	return &AuditService{topic: topic}
}

// Record 发布一条审计事件
func (s *AuditService) Record(actorID int64, action, targetType string, targetID int64, details string) {
	if s == nil || s.topic == "" {
		return
	}

	event := &kafka.AuditEvent{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		OccurredAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := kafka.SendAuditEvent(ctx, s.topic, event); err != nil {
		logger.Warn("Audit event dropped",
			zap.Int64("actor_id", actorID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
