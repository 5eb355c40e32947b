package repository

import (
	"remark-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByExternalID(externalID int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertByExternalID 首次见到外部身份时创建用户，已存在则刷新展示信息
// role 为身份解析后的最终角色（超管映射 > 已有高权角色 > 提供方标记 > 普通用户）
func (r *UserRepository) UpsertByExternalID(externalID int64, displayName string, avatar *string, role string) (*model.User, error) {
	user := &model.User{
		ExternalID:  externalID,
		DisplayName: displayName,
		Avatar:      avatar,
		Role:        role,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"display_name": displayName,
			"avatar":       avatar,
			"role":         role,
		}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	// upsert 命中已有行时主键不会回填，重新读取保证状态为最新
	return r.GetByExternalID(externalID)
}

// Update 按字段更新用户
func (r *UserRepository) Update(userID int64, updates map[string]interface{}) (*model.User, error) {
	result := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(userID)
}

// applyVoteDelta 将投票变化量累加到用户的累计票数上，db 可以是事务句柄
// 累计值在 SQL 层夹逼到 ≥0，丢失更新也不会把计数打成负数
func applyVoteDelta(db *gorm.DB, userID int64, upDelta, downDelta int) error {
	updates := map[string]interface{}{}
	if upDelta != 0 {
		updates["total_upvotes"] = gorm.Expr(
			"CASE WHEN total_upvotes + ? < 0 THEN 0 ELSE total_upvotes + ? END", upDelta, upDelta)
	}
	if downDelta != 0 {
		updates["total_downvotes"] = gorm.Expr(
			"CASE WHEN total_downvotes + ? < 0 THEN 0 ELSE total_downvotes + ? END", downDelta, downDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdateRankScore 持久化声望分
func (r *UserRepository) UpdateRankScore(userID int64, score int) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).
		Update("rank_score", score).Error
}

// CountComments 统计用户发表过的评论总数（含已删除，声望参与度输入）
func (r *UserRepository) CountComments(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
