package repository

import (
	"remark-go/internal/model"

	"gorm.io/gorm"
)

type ModerationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// 管理记录只追加，不提供更新与删除方法

func (r *ModerationRepository) CreateWarning(warning *model.Warning) error {
	return r.db.Create(warning).Error
}

func (r *ModerationRepository) CreateBan(ban *model.Ban) error {
	return r.db.Create(ban).Error
}

func (r *ModerationRepository) CreateShadowBan(sb *model.ShadowBan) error {
	return r.db.Create(sb).Error
}

func (r *ModerationRepository) CreateRoleChange(rc *model.RoleChange) error {
	return r.db.Create(rc).Error
}

// ReportExists 检查同一举报人是否已举报过该评论
func (r *ModerationRepository) ReportExists(commentID, reporterID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Report{}).
		Where("comment_id = ? AND reporter_id = ?", commentID, reporterID).
		Count(&count).Error
	return count > 0, err
}

func (r *ModerationRepository) CreateReport(report *model.Report) error {
	return r.db.Create(report).Error
}

// ListWarnings 获取用户的警告记录（按时间倒序）
func (r *ModerationRepository) ListWarnings(userID int64, skip, limit int) ([]model.Warning, int64, error) {
	query := r.db.Model(&model.Warning{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var warnings []model.Warning
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&warnings).Error
	if err != nil {
		return nil, 0, err
	}
	return warnings, total, nil
}

// ListReportsByComment 获取评论的举报记录
func (r *ModerationRepository) ListReportsByComment(commentID int64) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.Where("comment_id = ?", commentID).Order("created_at DESC").Find(&reports).Error
	return reports, err
}
