package service

import (
	"errors"
	"fmt"
	"time"

	"remark-go/internal/config"
	"remark-go/internal/model"
	"remark-go/internal/repository"

	"gorm.io/gorm"
)

// ModerationService 管理状态机：警告升级、禁言、封禁、影子封禁与角色变更
// 所有判定都基于请求开始时从库里读到的最新状态，跨请求不缓存
type ModerationService struct {
	userRepo    *repository.UserRepository
	modRepo     *repository.ModerationRepository
	commentRepo *repository.CommentRepository
	cfg         *config.ModerationConfig
	rateLimit   *RateLimitService
	audit       *AuditService
}

func NewModerationService(
	userRepo *repository.UserRepository,
	modRepo *repository.ModerationRepository,
	commentRepo *repository.CommentRepository,
	cfg *config.ModerationConfig,
	rateLimit *RateLimitService,
	audit *AuditService,
) *ModerationService {
	return &ModerationService{
		userRepo:    userRepo,
		modRepo:     modRepo,
		commentRepo: commentRepo,
		cfg:         cfg,
		rateLimit:   rateLimit,
		audit:       audit,
	}
}

// ---- 权限判定（纯函数，按表顺序求值，首个命中者生效）----

// CanModerate 判定 actor 是否可对 target 执行警告/封禁/影子封禁
// minRole 为该动作要求的最低角色
func CanModerate(actor, target *model.User, minRole string, now time.Time) error {
	actorRole := actor.EffectiveRole(now)

	// 超级管理员可对任何人执行任何操作
	if actor.Role == model.RoleSuperAdmin {
		if actor.ID == target.ID {
			return ErrSelfModeration
		}
		return nil
	}

	// 超级管理员对其他人的管理操作完全免疫
	if target.Role == model.RoleSuperAdmin {
		return ErrNoPermission
	}
	if actor.ID == target.ID {
		return ErrSelfModeration
	}
	if model.RoleRank[actorRole] < model.RoleRank[minRole] {
		return ErrNoPermission
	}
	// 同级或更高级的目标需要超级管理员
	if model.RoleRank[target.Role] >= model.RoleRank[actorRole] {
		return ErrNoPermission
	}
	return nil
}

// CanDeleteComment 判定 actor 是否可删除 author 的评论
func CanDeleteComment(actor, author *model.User, now time.Time) error {
	if actor.Role == model.RoleSuperAdmin {
		return nil
	}
	// 作者可删自己的评论
	if actor.ID == author.ID {
		return nil
	}
	// 版主/管理员可删他人评论，超级管理员的评论除外
	if author.Role == model.RoleSuperAdmin {
		return ErrNoPermission
	}
	if model.RoleRank[actor.EffectiveRole(now)] >= model.RoleRank[model.RoleModerator] {
		return nil
	}
	return ErrNoPermission
}

// CanChangeRole 判定角色变更是否允许
// 管理员只能授予/撤销版主；任何人都不能变更自己的角色；
// 超级管理员角色不可被授予，持有者也不可被变更
func CanChangeRole(actor, target *model.User, newRole string, now time.Time) error {
	if _, ok := model.RoleRank[newRole]; !ok || newRole == model.RoleSuperAdmin {
		return ErrInvalidRole
	}
	if actor.ID == target.ID {
		return ErrSelfModeration
	}
	if target.Role == model.RoleSuperAdmin {
		return ErrNoPermission
	}
	if actor.Role == model.RoleSuperAdmin {
		return nil
	}
	actorRole := actor.EffectiveRole(now)
	if actorRole != model.RoleAdmin {
		return ErrNoPermission
	}
	// 管理员：仅允许在 user 与 moderator 之间调整
	if newRole != model.RoleUser && newRole != model.RoleModerator {
		return ErrNoPermission
	}
	if model.RoleRank[target.Role] > model.RoleRank[model.RoleModerator] {
		return ErrNoPermission
	}
	return nil
}

// ---- 写入前的状态闸门 ----

// EnsureCanWrite 写操作前的状态检查：封禁阻断一切写入，禁言阻断发表评论
// 已过期的封禁/禁言/影子封禁标记在此惰性清除
func (s *ModerationService) EnsureCanWrite(user *model.User, action string) error {
	now := time.Now()
	updates := map[string]interface{}{}

	if user.IsBanned {
		if user.BanExpires != nil && !user.BanExpires.After(now) {
			updates["is_banned"] = false
			updates["ban_expires"] = nil
			user.IsBanned = false
		} else {
			return &BannedError{Until: user.BanExpires}
		}
	}

	if user.IsMuted {
		if user.MuteExpires != nil && !user.MuteExpires.After(now) {
			updates["is_muted"] = false
			updates["mute_expires"] = nil
			user.IsMuted = false
		} else if action == model.ActionComment {
			until := now
			if user.MuteExpires != nil {
				until = *user.MuteExpires
			}
			return &MutedError{Until: until}
		}
	}

	if user.ShadowBanned && user.ShadowBanExpires != nil && !user.ShadowBanExpires.After(now) {
		updates["shadow_banned"] = false
		updates["shadow_ban_expires"] = nil
		user.ShadowBanned = false
	}

	if len(updates) > 0 {
		if _, err := s.userRepo.Update(user.ID, updates); err != nil {
			return err
		}
	}
	return nil
}

// ---- 管理操作 ----

// Warn 警告用户并执行自动升级
// 第3次起触发1天禁言、第6次起触发7天禁言，触发后有效警告数清零；
// 累计警告数永远加一
func (s *ModerationService) Warn(actorID, targetID int64, reason string) (*model.User, error) {
	actor, target, err := s.loadPair(actorID, targetID)
	if err != nil {
		return nil, err
	}

	// 封禁阻断一切写操作，管理动作也不例外
	if err := s.EnsureCanWrite(actor, model.ActionWarn); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := CanModerate(actor, target, model.RoleModerator, now); err != nil {
		return nil, err
	}
	if err := s.rateLimit.Allow(actorID, model.ActionWarn); err != nil {
		return nil, err
	}

	if err := s.modRepo.CreateWarning(&model.Warning{
		UserID:   targetID,
		IssuedBy: actorID,
		Reason:   reason,
	}); err != nil {
		return nil, err
	}

	count := target.WarningCount + 1
	updates := map[string]interface{}{
		"total_warns": gorm.Expr("total_warns + 1"),
	}
	switch {
	case count >= 6:
		expires := now.Add(s.cfg.LongMuteDuration())
		updates["is_muted"] = true
		updates["mute_expires"] = expires
		updates["warning_count"] = 0
	case count >= 3:
		expires := now.Add(s.cfg.ShortMuteDuration())
		updates["is_muted"] = true
		updates["mute_expires"] = expires
		updates["warning_count"] = 0
	default:
		updates["warning_count"] = count
	}

	updated, err := s.userRepo.Update(targetID, updates)
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, AuditActionWarn, AuditTargetUser, targetID, reason)

	return updated, nil
}

// Ban 封禁用户，expires 为空表示永久
func (s *ModerationService) Ban(actorID, targetID int64, reason string, expires *time.Time) (*model.User, error) {
	actor, target, err := s.loadPair(actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureCanWrite(actor, model.ActionBan); err != nil {
		return nil, err
	}
	if err := CanModerate(actor, target, model.RoleAdmin, time.Now()); err != nil {
		return nil, err
	}
	if err := s.rateLimit.Allow(actorID, model.ActionBan); err != nil {
		return nil, err
	}

	if err := s.modRepo.CreateBan(&model.Ban{
		UserID:    targetID,
		IssuedBy:  actorID,
		Reason:    reason,
		ExpiresAt: expires,
	}); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.Update(targetID, map[string]interface{}{
		"is_banned":   true,
		"ban_expires": expires,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, AuditActionBan, AuditTargetUser, targetID, reason)

	return updated, nil
}

// Unban 显式解除封禁
func (s *ModerationService) Unban(actorID, targetID int64) (*model.User, error) {
	actor, target, err := s.loadPair(actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureCanWrite(actor, model.ActionBan); err != nil {
		return nil, err
	}
	if err := CanModerate(actor, target, model.RoleAdmin, time.Now()); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.Update(targetID, map[string]interface{}{
		"is_banned":   false,
		"ban_expires": nil,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, AuditActionUnban, AuditTargetUser, targetID, "")

	return updated, nil
}

// ShadowBan 影子封禁：用户仍可发言，但权限判定按普通用户处理
func (s *ModerationService) ShadowBan(actorID, targetID int64, reason string, expires *time.Time) (*model.User, error) {
	actor, target, err := s.loadPair(actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureCanWrite(actor, model.ActionBan); err != nil {
		return nil, err
	}
	if err := CanModerate(actor, target, model.RoleAdmin, time.Now()); err != nil {
		return nil, err
	}

	if err := s.modRepo.CreateShadowBan(&model.ShadowBan{
		UserID:    targetID,
		IssuedBy:  actorID,
		Reason:    reason,
		ExpiresAt: expires,
	}); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.Update(targetID, map[string]interface{}{
		"shadow_banned":      true,
		"shadow_ban_expires": expires,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, AuditActionShadowBan, AuditTargetUser, targetID, reason)

	return updated, nil
}

// ChangeRole 角色变更（附带只追加的变更记录）
func (s *ModerationService) ChangeRole(actorID, targetID int64, newRole, reason string) (*model.User, error) {
	actor, target, err := s.loadPair(actorID, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureCanWrite(actor, model.ActionRoleChange); err != nil {
		return nil, err
	}
	if err := CanChangeRole(actor, target, newRole, time.Now()); err != nil {
		return nil, err
	}

	if err := s.modRepo.CreateRoleChange(&model.RoleChange{
		UserID:    targetID,
		ChangedBy: actorID,
		OldRole:   target.Role,
		NewRole:   newRole,
		Reason:    reason,
	}); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.Update(targetID, map[string]interface{}{"role": newRole})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actorID, AuditActionRoleChange, AuditTargetUser, targetID,
		fmt.Sprintf("%s -> %s", target.Role, newRole))

	return updated, nil
}

// Report 举报评论，同一举报人重复举报视为冲突
func (s *ModerationService) Report(reporterID, commentID int64, reason string) (*model.Report, error) {
	reporter, err := s.userRepo.GetByID(reporterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.rateLimit.Allow(reporterID, model.ActionReport); err != nil {
		return nil, err
	}
	if err := s.EnsureCanWrite(reporter, model.ActionReport); err != nil {
		return nil, err
	}

	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	exists, err := s.modRepo.ReportExists(commentID, reporterID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReport
	}

	report := &model.Report{
		CommentID:  commentID,
		ReporterID: reporterID,
		Reason:     reason,
	}
	if err := s.modRepo.CreateReport(report); err != nil {
		return nil, err
	}

	s.audit.Record(reporterID, AuditActionReport, AuditTargetComment, commentID, reason)

	return report, nil
}

// ListWarnings 查询用户的警告记录
func (s *ModerationService) ListWarnings(userID int64, page, pageSize int) ([]model.Warning, int64, error) {
	skip := (page - 1) * pageSize
	return s.modRepo.ListWarnings(userID, skip, pageSize)
}

func (s *ModerationService) loadPair(actorID, targetID int64) (actor, target *model.User, err error) {
	actor, err = s.userRepo.GetByID(actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	target, err = s.userRepo.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	return actor, target, nil
}
