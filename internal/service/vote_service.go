package service

import (
	"context"
	"errors"
	"strconv"

	"remark-go/internal/api/dto"
	"remark-go/internal/model"
	"remark-go/internal/repository"
	"remark-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VoteService struct {
	voteRepo    *repository.VoteRepository
	commentRepo *repository.CommentRepository
	userRepo    *repository.UserRepository
	moderation  *ModerationService
	reputation  *ReputationService
	rateLimit   *RateLimitService
	cache       *CacheService
	audit       *AuditService
}

func NewVoteService(
	voteRepo *repository.VoteRepository,
	commentRepo *repository.CommentRepository,
	userRepo *repository.UserRepository,
	moderation *ModerationService,
	reputation *ReputationService,
	rateLimit *RateLimitService,
	cache *CacheService,
	audit *AuditService,
) *VoteService {
	return &VoteService{
		voteRepo:    voteRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		moderation:  moderation,
		reputation:  reputation,
		rateLimit:   rateLimit,
		cache:       cache,
		audit:       audit,
	}
}

// CastVote 投票切换：无票→记票，同向重复→撤销，反向→改票
// 计数更新与票据写入在同一事务内完成，聚合值由票据行重算得出
func (s *VoteService) CastVote(commentID, userID int64, voteType int16) (*dto.VoteResult, error) {
	if voteType != model.VoteUp && voteType != model.VoteDown {
		return nil, ErrInvalidVoteType
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.rateLimit.Allow(userID, model.ActionVote); err != nil {
		return nil, err
	}
	if err := s.moderation.EnsureCanWrite(user, model.ActionVote); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrCommentDeleted
	}

	result, err := s.voteRepo.Toggle(commentID, userID, comment.UserID, voteType)
	if err != nil {
		return nil, err
	}

	// 作者声望重算失败不影响投票结果
	if err := s.reputation.Recompute(comment.UserID); err != nil {
		logger.Warn("Reputation recompute failed after vote",
			zap.Int64("author_id", comment.UserID),
			zap.Error(err),
		)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateMedia(context.Background(), comment.MediaType, comment.MediaID); err != nil {
			logger.Warn("Comment cache invalidate failed after vote",
				zap.Int64("comment_id", commentID),
				zap.Error(err),
			)
		}
	}

	s.audit.Record(userID, AuditActionVote, AuditTargetComment, commentID, strconv.Itoa(int(result.State)))

	return &dto.VoteResult{
		CommentID:  commentID,
		State:      result.State,
		Upvotes:    result.Upvotes,
		Downvotes:  result.Downvotes,
		TotalVotes: result.TotalVotes,
	}, nil
}

// FetchMyVote 查询用户对某条评论的当前投票状态
func (s *VoteService) FetchMyVote(commentID, userID int64) (*dto.MyVoteData, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	vote, err := s.voteRepo.Get(commentID, userID)
	if err != nil {
		return nil, err
	}

	data := &dto.MyVoteData{CommentID: commentID}
	if vote != nil {
		data.VoteType = vote.VoteType
		data.VotedAt = &vote.UpdatedAt
	}
	return data, nil
}

// FetchVoters 获取评论的投票人列表
func (s *VoteService) FetchVoters(commentID int64, page, pageSize int) (*dto.VoterListData, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	votes, total, err := s.voteRepo.ListByComment(commentID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	voters := make([]dto.VoterInfo, 0, len(votes))
	for _, vote := range votes {
		voters = append(voters, dto.VoterInfo{
			UserID:   vote.UserID,
			Username: vote.User.DisplayName,
			Avatar:   vote.User.Avatar,
			VoteType: vote.VoteType,
			VotedAt:  vote.UpdatedAt,
		})
	}

	totalPages := int64(0)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}

	return &dto.VoterListData{
		Voters:     voters,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
