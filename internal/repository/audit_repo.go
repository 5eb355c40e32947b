package repository

import (
	"remark-go/internal/model"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create 归档一条审计日志（worker 从审计主题消费后调用）
func (r *AuditRepository) Create(log *model.AuditLog) error {
	return r.db.Create(log).Error
}

// ListByActor 按操作者查询审计日志
func (r *AuditRepository) ListByActor(actorID int64, skip, limit int) ([]model.AuditLog, int64, error) {
	query := r.db.Model(&model.AuditLog{}).Where("actor_id = ?", actorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	err := query.Order("occurred_at DESC").Offset(skip).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
