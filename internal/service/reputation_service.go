package service

import (
	"context"
	"math"

	"remark-go/internal/repository"
	"remark-go/pkg/logger"

	"go.uber.org/zap"
)

// 声望公式参数
// 质量指数与参与度除数是策略调优项，不是推导常量
const (
	wilsonZ              = 1.96 // 95% 置信区间
	qualityExponent      = 3.0
	participationDivisor = 3.0
	maxRankScore         = 100
)

// ReputationService 根据用户的累计票数与评论量派生 0-100 的声望分
// 声望分是咨询性派生数据，绝不能作为授权输入
type ReputationService struct {
	userRepo *repository.UserRepository
	cache    *CacheService
}

func NewReputationService(userRepo *repository.UserRepository, cache *CacheService) *ReputationService {
	return &ReputationService{userRepo: userRepo, cache: cache}
}

// ComputeRank 纯函数：由 (累计赞成票, 累计反对票, 评论总数) 计算声望分
//
// 第一步 质量分：Wilson 置信下界
// 第二步 参与度：log10(评论数+1)/3，约 1000 条评论时趋近 1
// 第三步 合成：floor(质量^3 * 参与度 * 100)，夹逼到 [0,100]
func (s *ReputationService) ComputeRank(upvotes, downvotes, commentCount int64) int {
	// 输入夹逼：撤票的负增量在丢失更新下也不能把票数带成负值
	if upvotes < 0 {
		upvotes = 0
	}
	if downvotes < 0 {
		downvotes = 0
	}
	if commentCount < 0 {
		commentCount = 0
	}

	n := float64(upvotes + downvotes)
	quality := 0.0
	if n > 0 {
		phat := float64(upvotes) / n
		z := wilsonZ
		quality = (phat + z*z/(2*n) - z*math.Sqrt((phat*(1-phat)+z*z/(4*n))/n)) / (1 + z*z/n)
	}

	participation := math.Log10(float64(commentCount)+1) / participationDivisor

	rank := int(math.Floor(math.Pow(quality, qualityExponent) * participation * 100))
	if rank < 0 {
		rank = 0
	}
	if rank > maxRankScore {
		rank = maxRankScore
	}
	return rank
}

// Recompute 重算并持久化用户声望分
// 在任何投票或评论事件之后调用；失败由调用方记录日志，绝不回滚主写入
func (s *ReputationService) Recompute(userID int64) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	commentCount, err := s.userRepo.CountComments(userID)
	if err != nil {
		return err
	}

	rank := s.ComputeRank(user.TotalUpvotes, user.TotalDownvotes, commentCount)

	if err := s.userRepo.UpdateRankScore(userID, rank); err != nil {
		return err
	}

	// 排行榜是咨询数据，写入失败只记日志
	if s.cache != nil {
		if err := s.cache.UpdateLeaderboard(context.Background(), userID, rank); err != nil {
			logger.Warn("Leaderboard update failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// TopRanked 查询声望排行榜前 n 名（缓存不可用时返回空）
func (s *ReputationService) TopRanked(n int64) ([]LeaderboardEntry, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.TopRanked(context.Background(), n)
}
