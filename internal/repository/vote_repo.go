package repository

import (
	"errors"

	"remark-go/internal/model"

	"gorm.io/gorm"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// ToggleResult 一次投票切换的结果
type ToggleResult struct {
	State      int16 // 切换后的状态，0 表示无投票
	UpChange   int   // 作者累计赞成票变化量（-1/0/+1）
	DownChange int   // 作者累计反对票变化量（-1/0/+1）
	Upvotes    int64 // 重算后的评论赞成票数
	Downvotes  int64 // 重算后的评论反对票数
	TotalVotes int64 // 重算后的评论总票数
}

// Toggle 在单个事务内执行三态切换并重算评论聚合计数
// 聚合值始终从投票表的权威行数重算，而不是增量累加，
// 并发交错或部分失败后不变式依然成立
func (r *VoteRepository) Toggle(commentID, userID, authorID int64, voteType int16) (*ToggleResult, error) {
	var result ToggleResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Vote
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		hasVote := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch {
		case !hasVote:
			// NONE → UP / NONE → DOWN
			vote := &model.Vote{CommentID: commentID, UserID: userID, VoteType: voteType}
			if err := tx.Create(vote).Error; err != nil {
				return err
			}
			result.State = voteType
			if voteType == model.VoteUp {
				result.UpChange = 1
			} else {
				result.DownChange = 1
			}

		case existing.VoteType == voteType:
			// UP → NONE / DOWN → NONE
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			result.State = 0
			if voteType == model.VoteUp {
				result.UpChange = -1
			} else {
				result.DownChange = -1
			}

		default:
			// UP ↔ DOWN 直接切换
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return err
			}
			result.State = voteType
			if voteType == model.VoteUp {
				result.UpChange, result.DownChange = 1, -1
			} else {
				result.UpChange, result.DownChange = -1, 1
			}
		}

		// 从投票表重算聚合
		up, down, err := countVotes(tx, commentID)
		if err != nil {
			return err
		}
		result.Upvotes, result.Downvotes = up, down
		result.TotalVotes = up + down

		if err := tx.Model(&model.Comment{}).Where("id = ?", commentID).
			Updates(map[string]interface{}{
				"upvotes":     up,
				"downvotes":   down,
				"total_votes": up + down,
			}).Error; err != nil {
			return err
		}

		// 作者累计票数变化与票据写入同事务
		return applyVoteDelta(tx, authorID, result.UpChange, result.DownChange)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func countVotes(tx *gorm.DB, commentID int64) (up, down int64, err error) {
	if err = tx.Model(&model.Vote{}).
		Where("comment_id = ? AND vote_type = ?", commentID, model.VoteUp).
		Count(&up).Error; err != nil {
		return
	}
	err = tx.Model(&model.Vote{}).
		Where("comment_id = ? AND vote_type = ?", commentID, model.VoteDown).
		Count(&down).Error
	return
}

// Get 查询某用户对某评论的当前投票，无记录返回 (nil, nil)
func (r *VoteRepository) Get(commentID, userID int64) (*model.Vote, error) {
	var vote model.Vote
	err := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ListByComment 获取评论的投票人列表
func (r *VoteRepository) ListByComment(commentID int64, skip, limit int) ([]model.Vote, int64, error) {
	query := r.db.Model(&model.Vote{}).Where("comment_id = ?", commentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var votes []model.Vote
	err := query.Preload("User").Order("updated_at DESC").
		Offset(skip).Limit(limit).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}
