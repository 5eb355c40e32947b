package model

import "time"

// AuditLog 审计日志归档（由 worker 从 Kafka 审计主题消费写入）
type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;comment:审计日志ID" json:"id"`
	ActorID    int64     `gorm:"not null;index:idx_audit_logs_actor_id;comment:操作者用户ID" json:"actor_id"`
	Action     string    `gorm:"size:64;not null;index:idx_audit_logs_action;comment:操作类型" json:"action"`
	TargetType string    `gorm:"size:32;not null;comment:目标类型" json:"target_type"`
	TargetID   int64     `gorm:"not null;comment:目标ID" json:"target_id"`
	Details    string    `gorm:"type:text;comment:操作详情" json:"details"`
	OccurredAt time.Time `gorm:"not null;index:idx_audit_logs_occurred_at;comment:操作发生时间" json:"occurred_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime;comment:归档时间" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
