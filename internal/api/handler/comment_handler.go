package handler

import (
	"errors"
	"strconv"

	"remark-go/internal/api/dto"
	"remark-go/internal/api/middleware"
	"remark-go/internal/api/response"
	"remark-go/internal/service"
	"remark-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create 发表评论
// @Summary 发表评论
// @Tags comments
// @Accept json
// @Produce json
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 201 {object} response.Response{data=dto.CommentInfo}
// @Router /api/v1/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.Unauthorized(c, "缺少认证信息")
		return
	}

	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	info, err := h.commentService.Create(user.ID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, "评论发表成功", info)
}

// Delete 删除评论（软删除）
// @Summary 删除评论
// @Tags comments
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
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

	var req dto.CommentDeleteRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.commentService.SoftDelete(commentID, user.ID, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "评论删除成功", nil)
}

// Edit 编辑评论
// @Summary 编辑评论
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "评论ID"
// @Param request body dto.CommentEditRequest true "新内容"
// @Success 200 {object} response.Response{data=dto.CommentInfo}
// @Router /api/v1/comments/{id} [put]
func (h *CommentHandler) Edit(c *gin.Context) {
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

	var req dto.CommentEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	info, err := h.commentService.Edit(commentID, user.ID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "评论编辑成功", info)
}

// List 获取媒体下的顶层评论列表
// @Summary 获取评论列表
// @Tags comments
// @Produce json
// @Param media_id query int true "媒体ID"
// @Param media_type query string true "媒体类型"
// @Param sort query string false "排序方式" Enums(newest, oldest, top)
// @Success 200 {object} response.Response{data=dto.CommentListData}
// @Router /api/v1/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	mediaID, err := strconv.ParseInt(c.Query("media_id"), 10, 64)
	if err != nil || mediaID <= 0 {
		response.BadRequest(c, "无效的媒体ID")
		return
	}
	mediaType := c.Query("media_type")
	if mediaType == "" {
		response.BadRequest(c, "缺少媒体类型")
		return
	}

	sort := c.DefaultQuery("sort", "newest")
	page, pageSize := parsePagination(c)

	data, err := h.commentService.FetchTopLevel(mediaID, mediaType, sort, page, pageSize, true)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "获取评论列表成功", data)
}

// Thread 获取评论线程（嵌套回复）
// @Summary 获取评论线程
// @Tags comments
// @Produce json
// @Param id path int true "评论ID"
// @Param max_depth query int false "最大展开深度"
// @Success 200 {object} response.Response{data=dto.ThreadData}
// @Router /api/v1/comments/{id}/thread [get]
func (h *CommentHandler) Thread(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	maxDepth, err := strconv.Atoi(c.DefaultQuery("max_depth", "-1"))
	if err != nil {
		maxDepth = -1
	}

	data, err := h.commentService.FetchThread(commentID, maxDepth)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "获取评论线程成功", data)
}

// EditHistory 获取评论的编辑历史
// @Summary 获取编辑历史
// @Tags comments
// @Produce json
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=[]dto.EditRecordInfo}
// @Router /api/v1/comments/{id}/history [get]
func (h *CommentHandler) EditHistory(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	records, err := h.commentService.ListEditHistory(commentID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "获取编辑历史成功", records)
}

// Tag 给评论打管理标签
// @Summary 打标签
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "评论ID"
// @Param request body dto.CommentTagRequest true "标签"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id}/tags [post]
func (h *CommentHandler) Tag(c *gin.Context) {
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

	var req dto.CommentTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.commentService.Tag(commentID, user.ID, &req); err != nil {
		h.handleError(c, err)
		return
	}

	response.OK(c, "标签设置成功", nil)
}

// handleError 将服务层错误映射为 HTTP 响应
func (h *CommentHandler) handleError(c *gin.Context, err error) {
	var rateLimited *service.RateLimitedError
	var muted *service.MutedError
	var banned *service.BannedError

	switch {
	case errors.As(err, &rateLimited):
		response.TooManyRequests(c, rateLimited.Error(), rateLimited.RetryAfter)
	case errors.As(err, &muted):
		response.Forbidden(c, muted.Error())
	case errors.As(err, &banned):
		response.Forbidden(c, banned.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrParentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrParentMediaMismatch),
		errors.Is(err, service.ErrDepthLimitExceeded),
		errors.Is(err, service.ErrContentEmpty),
		errors.Is(err, service.ErrContentTooLong),
		errors.Is(err, service.ErrInvalidTagType):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrCommentDeleted):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("Comment handler internal error", zap.Error(err))
		response.InternalError(c, "服务器内部错误")
	}
}
