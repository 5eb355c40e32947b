package handler

import (
	"errors"

	"remark-go/internal/api/dto"
	"remark-go/internal/api/middleware"
	"remark-go/internal/api/response"
	"remark-go/internal/model"
	"remark-go/internal/service"
	"remark-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ModerationHandler struct {
	moderationService *service.ModerationService
}

func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Warn 警告用户
// @Summary 警告用户
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body dto.WarnRequest true "警告原因"
// @Success 200 {object} response.Response{data=dto.ModerationStateInfo}
// @Router /api/v1/moderation/users/{id}/warnings [post]
func (h *ModerationHandler) Warn(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req dto.WarnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.moderationService.Warn(actor.ID, targetID, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "警告已下达", toModerationState(updated))
}

// Ban 封禁用户
// @Summary 封禁用户
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body dto.BanRequest true "封禁原因与期限"
// @Success 200 {object} response.Response{data=dto.ModerationStateInfo}
// @Router /api/v1/moderation/users/{id}/ban [post]
func (h *ModerationHandler) Ban(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req dto.BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.moderationService.Ban(actor.ID, targetID, req.Reason, req.Expires)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "封禁已生效", toModerationState(updated))
}

// Unban 解除封禁
// @Summary 解除封禁
// @Tags moderation
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.ModerationStateInfo}
// @Router /api/v1/moderation/users/{id}/ban [delete]
func (h *ModerationHandler) Unban(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	updated, err := h.moderationService.Unban(actor.ID, targetID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "封禁已解除", toModerationState(updated))
}

// ShadowBan 影子封禁
// @Summary 影子封禁
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body dto.ShadowBanRequest true "原因与期限"
// @Success 200 {object} response.Response{data=dto.ModerationStateInfo}
// @Router /api/v1/moderation/users/{id}/shadow-ban [post]
func (h *ModerationHandler) ShadowBan(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req dto.ShadowBanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.moderationService.ShadowBan(actor.ID, targetID, req.Reason, req.Expires)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "影子封禁已生效", toModerationState(updated))
}

// ChangeRole 变更用户角色
// @Summary 变更角色
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body dto.RoleChangeRequest true "新角色"
// @Success 200 {object} response.Response{data=dto.ModerationStateInfo}
// @Router /api/v1/moderation/users/{id}/role [put]
func (h *ModerationHandler) ChangeRole(c *gin.Context) {
	actor, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req dto.RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.moderationService.ChangeRole(actor.ID, targetID, req.NewRole, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "角色变更成功", toModerationState(updated))
}

// Report 举报评论
// @Summary 举报评论
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "评论ID"
// @Param request body dto.ReportRequest true "举报原因"
// @Success 201 {object} response.Response
// @Router /api/v1/comments/{id}/reports [post]
func (h *ModerationHandler) Report(c *gin.Context) {
	reporter, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if _, err := h.moderationService.Report(reporter.ID, commentID, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, "举报已提交", nil)
}

// Warnings 查询用户的警告记录
// @Summary 查询警告记录
// @Tags moderation
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.WarningListData}
// @Router /api/v1/moderation/users/{id}/warnings [get]
func (h *ModerationHandler) Warnings(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	page, pageSize := parsePagination(c)

	warnings, total, err := h.moderationService.ListWarnings(targetID, page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]dto.WarningInfo, 0, len(warnings))
	for _, w := range warnings {
		items = append(items, dto.WarningInfo{
			ID:        w.ID,
			UserID:    w.UserID,
			IssuedBy:  w.IssuedBy,
			Reason:    w.Reason,
			CreatedAt: w.CreatedAt,
		})
	}

	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}

	response.OK(c, "获取警告记录成功", &dto.WarningListData{
		Warnings:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func toModerationState(u *model.User) *dto.ModerationStateInfo {
	return &dto.ModerationStateInfo{
		UserID:       u.ID,
		Role:         u.Role,
		IsBanned:     u.IsBanned,
		BanExpires:   u.BanExpires,
		ShadowBanned: u.ShadowBanned,
		IsMuted:      u.IsMuted,
		MuteExpires:  u.MuteExpires,
		WarningCount: u.WarningCount,
		TotalWarns:   u.TotalWarns,
	}
}

func (h *ModerationHandler) handleError(c *gin.Context, err error) {
	var rateLimited *service.RateLimitedError
	var banned *service.BannedError

	switch {
	case errors.As(err, &rateLimited):
		response.TooManyRequests(c, rateLimited.Error(), rateLimited.RetryAfter)
	case errors.As(err, &banned):
		response.Forbidden(c, banned.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNoPermission),
		errors.Is(err, service.ErrSelfModeration):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrDuplicateReport):
		response.Conflict(c, err.Error())
	default:
		logger.Error("Moderation handler internal error", zap.Error(err))
		response.InternalError(c, "服务器内部错误")
	}
}
