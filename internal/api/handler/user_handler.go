package handler

import (
	"errors"
	"strconv"

	"remark-go/internal/api/dto"
	"remark-go/internal/api/middleware"
	"remark-go/internal/api/response"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/internal/service"
	"remark-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserHandler struct {
	userRepo          *repository.UserRepository
	reputationService *service.ReputationService
	rateLimitService  *service.RateLimitService
}

func NewUserHandler(
	userRepo *repository.UserRepository,
	reputationService *service.ReputationService,
	rateLimitService *service.RateLimitService,
) *UserHandler {
	return &UserHandler{
		userRepo:          userRepo,
		reputationService: reputationService,
		rateLimitService:  rateLimitService,
	}
}

// Me 获取当前登录用户信息
// @Summary 当前用户
// @Tags users
// @Produce json
// @Success 200 {object} response.Response{data=dto.UserInfo}
// @Router /api/v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	response.OK(c, "获取用户信息成功", toUserInfo(user))
}

// Profile 查询用户信息
// @Summary 查询用户
// @Tags users
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.UserInfo}
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, service.ErrUserNotFound.Error())
			return
		}
		logger.Error("User profile lookup failed", zap.Error(err))
		response.InternalError(c, "服务器内部错误")
		return
	}

	response.OK(c, "获取用户信息成功", toUserInfo(user))
}

// Leaderboard 声望排行榜
// @Summary 声望排行榜
// @Tags users
// @Produce json
// @Param limit query int false "榜单长度"
// @Success 200 {object} response.Response{data=dto.LeaderboardData}
// @Router /api/v1/users/leaderboard [get]
func (h *UserHandler) Leaderboard(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	entries, err := h.reputationService.TopRanked(limit)
	if err != nil {
		logger.Error("Leaderboard lookup failed", zap.Error(err))
		response.InternalError(c, "服务器内部错误")
		return
	}

	items := make([]dto.LeaderboardEntryInfo, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.LeaderboardEntryInfo{
			UserID: entry.UserID,
			Score:  entry.Score,
		})
	}

	response.OK(c, "获取排行榜成功", &dto.LeaderboardData{Entries: items})
}

// RateLimitStatus 查询当前用户各动作的剩余限流预算
// @Summary 限流状态
// @Tags users
// @Produce json
// @Success 200 {object} response.Response{data=[]service.ActionStatus}
// @Router /api/v1/users/me/ratelimit [get]
func (h *UserHandler) RateLimitStatus(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	statuses, err := h.rateLimitService.Status(user.ID)
	if err != nil {
		logger.Error("Rate limit status lookup failed", zap.Error(err))
		response.InternalError(c, "服务器内部错误")
		return
	}

	response.OK(c, "获取限流状态成功", statuses)
}

func toUserInfo(u *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:             u.ID,
		ExternalID:     u.ExternalID,
		DisplayName:    u.DisplayName,
		Avatar:         u.Avatar,
		Role:           u.Role,
		TotalUpvotes:   u.TotalUpvotes,
		TotalDownvotes: u.TotalDownvotes,
		RankScore:      u.RankScore,
		CreatedAt:      u.CreatedAt,
	}
}
