package service

import (
	"errors"
	"testing"

	"remark-go/internal/config"
	"remark-go/internal/model"
)

// stubVerifier 按凭证字符串返回预置的身份
type stubVerifier struct {
	identities map[string]*Identity
}

func (s *stubVerifier) Verify(credential string) (*Identity, error) {
	if identity, ok := s.identities[credential]; ok {
		return identity, nil
	}
	return nil, errors.New("bad credential")
}

func newIdentityFixture(t *testing.T, superAdminExternalID int64, identities map[string]*Identity) (*testEnv, *IdentityService) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewIdentityService(env.userRepo, &stubVerifier{identities: identities},
		&config.ModerationConfig{SuperAdminExternalID: superAdminExternalID})
	return env, svc
}

func TestAuthenticateCreatesUserOnFirstSight(t *testing.T) {
	_, svc := newIdentityFixture(t, 0, map[string]*Identity{
		"tok": {ExternalID: 7, DisplayName: "新用户"},
	})

	user, err := svc.Authenticate("tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ExternalID != 7 || user.Role != model.RoleUser {
		t.Fatalf("unexpected user %+v", user)
	}

	// 再次认证命中同一行
	again, err := svc.Authenticate("tok")
	if err != nil {
		t.Fatalf("authenticate again: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same user row, got %d and %d", user.ID, again.ID)
	}
}

func TestAuthenticateInvalidCredential(t *testing.T) {
	_, svc := newIdentityFixture(t, 0, map[string]*Identity{})
	if _, err := svc.Authenticate("bogus"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthenticateModeratorFlag(t *testing.T) {
	_, svc := newIdentityFixture(t, 0, map[string]*Identity{
		"tok": {ExternalID: 8, DisplayName: "版主", ModeratorFlag: true},
	})

	user, err := svc.Authenticate("tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != model.RoleModerator {
		t.Fatalf("expected moderator role, got %s", user.Role)
	}
}

func TestAuthenticateKeepsHigherStoredRole(t *testing.T) {
	env, svc := newIdentityFixture(t, 0, map[string]*Identity{
		"tok": {ExternalID: 9, DisplayName: "老管理员"},
	})

	if err := env.db.Create(&model.User{
		ExternalID:  9,
		DisplayName: "老管理员",
		Role:        model.RoleAdmin,
	}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	user, err := svc.Authenticate("tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	// 提供方未带版主标记，但库内的管理员角色保留
	if user.Role != model.RoleAdmin {
		t.Fatalf("expected admin role preserved, got %s", user.Role)
	}
}

func TestAuthenticateSuperAdminMapping(t *testing.T) {
	_, svc := newIdentityFixture(t, 99, map[string]*Identity{
		"tok": {ExternalID: 99, DisplayName: "站长"},
	})

	user, err := svc.Authenticate("tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != model.RoleSuperAdmin {
		t.Fatalf("expected super_admin from configured mapping, got %s", user.Role)
	}
}

func TestAuthenticateDemotesStaleSuperAdmin(t *testing.T) {
	env, svc := newIdentityFixture(t, 99, map[string]*Identity{
		"tok": {ExternalID: 10, DisplayName: "前站长"},
	})

	// 库内残留的超级管理员不再匹配配置映射
	if err := env.db.Create(&model.User{
		ExternalID:  10,
		DisplayName: "前站长",
		Role:        model.RoleSuperAdmin,
	}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	user, err := svc.Authenticate("tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("expected stale super_admin demoted to admin, got %s", user.Role)
	}
}
