package handler

import (
	"errors"

	"remark-go/internal/api/dto"
	"remark-go/internal/api/middleware"
	"remark-go/internal/api/response"
	"remark-go/internal/service"
	"remark-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoteHandler struct {
	voteService *service.VoteService
}

func NewVoteHandler(voteService *service.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

// Cast 投票（重复投同向票即撤销，反向票直接改票）
// @Summary 投票
// @Tags votes
// @Accept json
// @Produce json
// @Param id path int true "评论ID"
// @Param request body dto.VoteRequest true "投票方向"
// @Success 200 {object} response.Response{data=dto.VoteResult}
// @Router /api/v1/comments/{id}/votes [post]
func (h *VoteHandler) Cast(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.voteService.CastVote(commentID, user.ID, req.VoteType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "投票成功", result)
}

// MyVote 获取当前用户对评论的投票状态
// @Summary 获取我的投票状态
// @Tags votes
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=dto.MyVoteData}
// @Router /api/v1/comments/{id}/votes/me [get]
func (h *VoteHandler) MyVote(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	data, err := h.voteService.FetchMyVote(commentID, user.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "获取投票状态成功", data)
}

// Voters 获取评论的投票人列表
// @Summary 获取投票人列表
// @Tags votes
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=dto.VoterListData}
// @Router /api/v1/comments/{id}/votes [get]
func (h *VoteHandler) Voters(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	page, pageSize := parsePagination(c)

	data, err := h.voteService.FetchVoters(commentID, page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "获取投票人列表成功", data)
}

func (h *VoteHandler) handleError(c *gin.Context, err error) {
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
	case errors.Is(err, service.ErrInvalidVoteType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrCommentDeleted):
		response.Conflict(c, err.Error())
	default:
		logger.Error("Vote handler internal error", zap.Error(err))
		response.InternalError(c, "服务器内部错误")
	}
}
