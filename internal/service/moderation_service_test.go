package service

import (
	"errors"
	"testing"
	"time"

	"remark-go/internal/model"
)

func roleUser(id int64, role string) *model.User {
	return &model.User{ID: id, Role: role}
}

func TestCanModerate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		actor   *model.User
		target  *model.User
		minRole string
		wantErr error
	}{
		{"moderator warns user", roleUser(1, model.RoleModerator), roleUser(2, model.RoleUser), model.RoleModerator, nil},
		{"user cannot warn", roleUser(1, model.RoleUser), roleUser(2, model.RoleUser), model.RoleModerator, ErrNoPermission},
		{"moderator cannot ban (admin action)", roleUser(1, model.RoleModerator), roleUser(2, model.RoleUser), model.RoleAdmin, ErrNoPermission},
		{"moderator cannot warn moderator", roleUser(1, model.RoleModerator), roleUser(2, model.RoleModerator), model.RoleModerator, ErrNoPermission},
		{"admin warns moderator", roleUser(1, model.RoleAdmin), roleUser(2, model.RoleModerator), model.RoleModerator, nil},
		{"admin cannot target admin", roleUser(1, model.RoleAdmin), roleUser(2, model.RoleAdmin), model.RoleAdmin, ErrNoPermission},
		{"super admin targets admin", roleUser(1, model.RoleSuperAdmin), roleUser(2, model.RoleAdmin), model.RoleAdmin, nil},
		{"nobody targets super admin", roleUser(1, model.RoleAdmin), roleUser(2, model.RoleSuperAdmin), model.RoleModerator, ErrNoPermission},
		{"self moderation rejected", roleUser(1, model.RoleAdmin), roleUser(1, model.RoleAdmin), model.RoleModerator, ErrSelfModeration},
		{"super admin self rejected", roleUser(1, model.RoleSuperAdmin), roleUser(1, model.RoleSuperAdmin), model.RoleAdmin, ErrSelfModeration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanModerate(tt.actor, tt.target, tt.minRole, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCanModerateShadowBannedActor(t *testing.T) {
	now := time.Now()
	actor := roleUser(1, model.RoleModerator)
	actor.ShadowBanned = true

	// 影子封禁的版主按普通用户判定
	if err := CanModerate(actor, roleUser(2, model.RoleUser), model.RoleModerator, now); !errors.Is(err, ErrNoPermission) {
		t.Fatalf("expected ErrNoPermission for shadow-banned moderator, got %v", err)
	}

	// 影子封禁到期后恢复
	expired := now.Add(-time.Hour)
	actor.ShadowBanExpires = &expired
	if err := CanModerate(actor, roleUser(2, model.RoleUser), model.RoleModerator, now); err != nil {
		t.Fatalf("expected expired shadow ban to restore role, got %v", err)
	}
}

func TestCanDeleteComment(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		actor   *model.User
		author  *model.User
		wantErr error
	}{
		{"author deletes own", roleUser(1, model.RoleUser), roleUser(1, model.RoleUser), nil},
		{"user cannot delete others", roleUser(1, model.RoleUser), roleUser(2, model.RoleUser), ErrNoPermission},
		{"moderator deletes others", roleUser(1, model.RoleModerator), roleUser(2, model.RoleUser), nil},
		{"moderator cannot delete super admin comment", roleUser(1, model.RoleModerator), roleUser(2, model.RoleSuperAdmin), ErrNoPermission},
		{"super admin deletes anything", roleUser(1, model.RoleSuperAdmin), roleUser(2, model.RoleAdmin), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeleteComment(tt.actor, tt.author, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		actor   *model.User
		target  *model.User
		newRole string
		wantErr error
	}{
		{"admin promotes user to moderator", roleUser(1, model.RoleAdmin), roleUser(2, model.RoleUser), model.RoleModerator, nil},
		{"admin demotes moderator", roleUser(1, model.RoleAdmin), roleUser(2, model.RoleModerator), model.RoleUser, nil},
		{"admin cannot grant admin", roleUser(1, model.RoleAdmin), roleUser(2, model.RoleUser), model.RoleAdmin, ErrNoPermission},
		{"moderator cannot change roles", roleUser(1, model.RoleModerator), roleUser(2, model.RoleUser), model.RoleModerator, ErrNoPermission},
		{"super admin grants admin", roleUser(1, model.RoleSuperAdmin), roleUser(2, model.RoleUser), model.RoleAdmin, nil},
		{"super admin role not grantable", roleUser(1, model.RoleSuperAdmin), roleUser(2, model.RoleAdmin), model.RoleSuperAdmin, ErrInvalidRole},
		{"unknown role rejected", roleUser(1, model.RoleSuperAdmin), roleUser(2, model.RoleUser), "owner", ErrInvalidRole},
		{"self change rejected", roleUser(1, model.RoleSuperAdmin), roleUser(1, model.RoleSuperAdmin), model.RoleAdmin, ErrSelfModeration},
		{"super admin holder immune", roleUser(1, model.RoleSuperAdmin), roleUser(2, model.RoleSuperAdmin), model.RoleUser, ErrNoPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanChangeRole(tt.actor, tt.target, tt.newRole, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWarnEscalation(t *testing.T) {
	env := newTestEnv(t)
	mod := env.seedUser(t, model.RoleModerator)
	target := env.seedUser(t, model.RoleUser)

	// 前两次警告只累计
	for i := 1; i <= 2; i++ {
		updated, err := env.moderation.Warn(mod.ID, target.ID, "违规发言")
		if err != nil {
			t.Fatalf("warn #%d: %v", i, err)
		}
		if updated.WarningCount != i {
			t.Fatalf("warn #%d: expected warning_count %d, got %d", i, i, updated.WarningCount)
		}
		if updated.IsMuted {
			t.Fatalf("warn #%d: unexpected mute", i)
		}
	}

	// 第3次触发禁言并清零有效警告数
	updated, err := env.moderation.Warn(mod.ID, target.ID, "违规发言")
	if err != nil {
		t.Fatalf("warn #3: %v", err)
	}
	if !updated.IsMuted {
		t.Fatal("warn #3: expected mute")
	}
	if updated.MuteExpires == nil {
		t.Fatal("warn #3: expected mute expiry")
	}
	if updated.WarningCount != 0 {
		t.Fatalf("warn #3: expected warning_count reset, got %d", updated.WarningCount)
	}
	if updated.TotalWarns != 3 {
		t.Fatalf("warn #3: expected total_warns 3, got %d", updated.TotalWarns)
	}

	firstMute := *updated.MuteExpires

	// 清零后第4、5次重新累计，第6次（有效计数再次到3）触发新的禁言
	for i := 4; i <= 5; i++ {
		if updated, err = env.moderation.Warn(mod.ID, target.ID, "违规发言"); err != nil {
			t.Fatalf("warn #%d: %v", i, err)
		}
	}
	updated, err = env.moderation.Warn(mod.ID, target.ID, "违规发言")
	if err != nil {
		t.Fatalf("warn #6: %v", err)
	}
	if !updated.IsMuted {
		t.Fatal("warn #6: expected mute")
	}
	if updated.WarningCount != 0 {
		t.Fatalf("warn #6: expected warning_count reset, got %d", updated.WarningCount)
	}
	if updated.TotalWarns != 6 {
		t.Fatalf("warn #6: expected total_warns 6, got %d", updated.TotalWarns)
	}
	if updated.MuteExpires == nil || !updated.MuteExpires.After(firstMute) {
		t.Fatal("warn #6: expected a fresh mute expiry")
	}
}

func TestBanBlocksAllWrites(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, model.RoleAdmin)
	target := env.seedUser(t, model.RoleUser)

	if _, err := env.moderation.Ban(admin.ID, target.ID, "恶意刷屏", nil); err != nil {
		t.Fatalf("ban: %v", err)
	}

	banned, _ := env.userRepo.GetByID(target.ID)
	var bannedErr *BannedError
	if err := env.moderation.EnsureCanWrite(banned, model.ActionComment); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError for comment, got %v", err)
	}
	if err := env.moderation.EnsureCanWrite(banned, model.ActionVote); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError for vote, got %v", err)
	}
}

func TestBannedActorCannotModerate(t *testing.T) {
	env := newTestEnv(t)
	super := env.seedUser(t, model.RoleSuperAdmin)
	mod := env.seedUser(t, model.RoleModerator)
	admin := env.seedUser(t, model.RoleAdmin)
	target := env.seedUser(t, model.RoleUser)

	// 管理人员被封禁后，管理动作同样被阻断
	if _, err := env.moderation.Ban(super.ID, mod.ID, "滥用权限", nil); err != nil {
		t.Fatalf("ban moderator: %v", err)
	}
	if _, err := env.moderation.Ban(super.ID, admin.ID, "滥用权限", nil); err != nil {
		t.Fatalf("ban admin: %v", err)
	}

	var bannedErr *BannedError
	if _, err := env.moderation.Warn(mod.ID, target.ID, "测试"); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError from warn, got %v", err)
	}
	if _, err := env.moderation.Ban(admin.ID, target.ID, "测试", nil); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError from ban, got %v", err)
	}
	if _, err := env.moderation.ShadowBan(admin.ID, target.ID, "测试", nil); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError from shadow ban, got %v", err)
	}
	if _, err := env.moderation.ChangeRole(admin.ID, target.ID, model.RoleModerator, "测试"); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError from role change, got %v", err)
	}
	if _, err := env.moderation.Unban(admin.ID, mod.ID); !errors.As(err, &bannedErr) {
		t.Fatalf("expected BannedError from unban, got %v", err)
	}

	// 目标用户未被动过
	fresh, _ := env.userRepo.GetByID(target.ID)
	if fresh.WarningCount != 0 || fresh.IsBanned || fresh.ShadowBanned || fresh.Role != model.RoleUser {
		t.Fatalf("target mutated by banned actor: %+v", fresh)
	}
}

func TestMuteBlocksOnlyComments(t *testing.T) {
	env := newTestEnv(t)
	target := env.seedUser(t, model.RoleUser)

	expires := time.Now().Add(time.Hour)
	if _, err := env.userRepo.Update(target.ID, map[string]interface{}{
		"is_muted": true, "mute_expires": expires,
	}); err != nil {
		t.Fatalf("mute: %v", err)
	}

	muted, _ := env.userRepo.GetByID(target.ID)
	var mutedErr *MutedError
	if err := env.moderation.EnsureCanWrite(muted, model.ActionComment); !errors.As(err, &mutedErr) {
		t.Fatalf("expected MutedError for comment, got %v", err)
	}
	// 禁言不阻断投票
	muted, _ = env.userRepo.GetByID(target.ID)
	if err := env.moderation.EnsureCanWrite(muted, model.ActionVote); err != nil {
		t.Fatalf("expected vote to pass while muted, got %v", err)
	}
}

func TestExpiredBanClearedLazily(t *testing.T) {
	env := newTestEnv(t)
	target := env.seedUser(t, model.RoleUser)

	expired := time.Now().Add(-time.Minute)
	if _, err := env.userRepo.Update(target.ID, map[string]interface{}{
		"is_banned": true, "ban_expires": expired,
	}); err != nil {
		t.Fatalf("set expired ban: %v", err)
	}

	banned, _ := env.userRepo.GetByID(target.ID)
	if err := env.moderation.EnsureCanWrite(banned, model.ActionComment); err != nil {
		t.Fatalf("expected expired ban to clear, got %v", err)
	}

	fresh, _ := env.userRepo.GetByID(target.ID)
	if fresh.IsBanned {
		t.Fatal("expected is_banned cleared in storage")
	}
}

func TestReportDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	reporter := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	if _, err := env.moderation.Report(reporter.ID, comment.ID, "包含剧透"); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if _, err := env.moderation.Report(reporter.ID, comment.ID, "还是剧透"); !errors.Is(err, ErrDuplicateReport) {
		t.Fatalf("expected ErrDuplicateReport, got %v", err)
	}
	// 其他人仍可举报
	other := env.seedUser(t, model.RoleUser)
	if _, err := env.moderation.Report(other.ID, comment.ID, "包含剧透"); err != nil {
		t.Fatalf("second reporter: %v", err)
	}
}

func TestChangeRolePersistsAndRecords(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, model.RoleAdmin)
	target := env.seedUser(t, model.RoleUser)

	updated, err := env.moderation.ChangeRole(admin.ID, target.ID, model.RoleModerator, "表现优秀")
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != model.RoleModerator {
		t.Fatalf("expected role moderator, got %s", updated.Role)
	}

	var count int64
	if err := env.db.Model(&model.RoleChange{}).Where("user_id = ?", target.ID).Count(&count).Error; err != nil {
		t.Fatalf("count role changes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 role change record, got %d", count)
	}
}
