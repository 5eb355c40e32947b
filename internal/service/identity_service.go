package service

import (
	"remark-go/internal/config"
	"remark-go/internal/model"
	"remark-go/internal/repository"
)

// Identity 外部身份提供方验签后得到的身份信息
type Identity struct {
	ExternalID    int64
	DisplayName   string
	AvatarURL     *string
	ModeratorFlag bool
}

// Verifier 凭证验签接口，由具体的身份提供方实现
type Verifier interface {
	Verify(credential string) (*Identity, error)
}

// IdentityService 将外部身份映射为本地用户
// 角色解析优先级：配置的超级管理员映射 > 库内已有的更高角色 > 提供方的版主标记 > 普通用户
type IdentityService struct {
	userRepo *repository.UserRepository
	verifier Verifier
	cfg      *config.ModerationConfig
}

func NewIdentityService(userRepo *repository.UserRepository, verifier Verifier, cfg *config.ModerationConfig) *IdentityService {
	return &IdentityService{
		userRepo: userRepo,
		verifier: verifier,
		cfg:      cfg,
	}
}

// Authenticate 校验凭证并落库（首次出现的外部身份自动建档）
func (s *IdentityService) Authenticate(credential string) (*model.User, error) {
	identity, err := s.verifier.Verify(credential)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	role := s.resolveRole(identity)

	return s.userRepo.UpsertByExternalID(identity.ExternalID, identity.DisplayName, identity.AvatarURL, role)
}

// resolveRole 计算本次登录应持有的角色
func (s *IdentityService) resolveRole(identity *Identity) string {
	// 配置的超级管理员映射永远优先
	if s.cfg != nil && s.cfg.SuperAdminExternalID != 0 && identity.ExternalID == s.cfg.SuperAdminExternalID {
		return model.RoleSuperAdmin
	}

	role := model.RoleUser
	if identity.ModeratorFlag {
		role = model.RoleModerator
	}

	// 库内已有角色更高时保留；但超级管理员角色只能来自配置映射，
	// 配置变更后残留的超级管理员降级为管理员
	if existing, err := s.userRepo.GetByExternalID(identity.ExternalID); err == nil {
		existingRole := existing.Role
		if existingRole == model.RoleSuperAdmin {
			existingRole = model.RoleAdmin
		}
		if model.RoleRank[existingRole] > model.RoleRank[role] {
			role = existingRole
		}
	}
	return role
}
