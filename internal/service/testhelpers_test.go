package service

import (
	"fmt"
	"testing"

	"remark-go/internal/config"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/pkg/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	_ = logger.Init("error", "console", "stdout", "")
}

// newTestDB 为每个测试建一个独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// 内存库限制为单连接，避免表在另一个连接上不可见
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Comment{},
		&model.CommentEditRecord{},
		&model.CommentTag{},
		&model.Vote{},
		&model.RateLimitWindow{},
		&model.Warning{},
		&model.Ban{},
		&model.ShadowBan{},
		&model.RoleChange{},
		&model.Report{},
		&model.AuditLog{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// testEnv 打包一组可直接使用的服务与仓储（无 Redis、无 Kafka）
type testEnv struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	commentRepo *repository.CommentRepository
	voteRepo    *repository.VoteRepository
	moderation  *ModerationService
	reputation  *ReputationService
	rateLimit   *RateLimitService
	comments    *CommentService
	votes       *VoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)
	moderationRepo := repository.NewModerationRepository(db)

	// Kafka 未初始化，空 topic 让审计退化为 no-op
	audit := NewAuditService("")
	cache := NewCacheService(nil)
	// 测试里放宽预算，限流行为由专门的用例覆盖
	rateLimit := NewRateLimitService(rateLimitRepo, &config.RateLimitConfig{
		Budgets: map[string]config.ActionBudget{
			model.ActionComment: {Limit: 1000, WindowMinutes: 60},
			model.ActionVote:    {Limit: 1000, WindowMinutes: 60},
			model.ActionDelete:  {Limit: 1000, WindowMinutes: 60},
			model.ActionEdit:    {Limit: 1000, WindowMinutes: 60},
			model.ActionReport:  {Limit: 1000, WindowMinutes: 60},
			model.ActionWarn:    {Limit: 1000, WindowMinutes: 60},
			model.ActionBan:     {Limit: 1000, WindowMinutes: 60},
		},
	})
	reputation := NewReputationService(userRepo, cache)
	moderation := NewModerationService(userRepo, moderationRepo, commentRepo, &config.ModerationConfig{}, rateLimit, audit)
	comments := NewCommentService(commentRepo, userRepo, moderation, reputation, rateLimit, cache, audit)
	votes := NewVoteService(voteRepo, commentRepo, userRepo, moderation, reputation, rateLimit, cache, audit)

	return &testEnv{
		db:          db,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		voteRepo:    voteRepo,
		moderation:  moderation,
		reputation:  reputation,
		rateLimit:   rateLimit,
		comments:    comments,
		votes:       votes,
	}
}

var testExternalID int64 = 1000

// seedUser 创建测试用户
func (e *testEnv) seedUser(t *testing.T, role string) *model.User {
	t.Helper()
	testExternalID++
	user := &model.User{
		ExternalID:  testExternalID,
		DisplayName: fmt.Sprintf("user-%d", testExternalID),
		Role:        role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedComment 创建测试评论
func (e *testEnv) seedComment(t *testing.T, userID int64, parentID *int64, depth int) *model.Comment {
	t.Helper()
	comment := &model.Comment{
		UserID:     userID,
		MediaID:    1,
		MediaType:  "movie",
		ParentID:   parentID,
		DepthLevel: depth,
		Content:    "测试评论内容",
	}
	if err := e.db.Create(comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return comment
}
