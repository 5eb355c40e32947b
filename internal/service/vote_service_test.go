package service

import (
	"errors"
	"testing"

	"remark-go/internal/model"
)

func TestCastVoteToggleCycle(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	voter := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	// NONE → UP
	result, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if result.State != model.VoteUp || result.Upvotes != 1 || result.TotalVotes != 1 {
		t.Fatalf("unexpected state after upvote: %+v", result)
	}

	// UP → NONE（同向重复撤销）
	result, err = env.votes.CastVote(comment.ID, voter.ID, model.VoteUp)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if result.State != 0 || result.Upvotes != 0 || result.TotalVotes != 0 {
		t.Fatalf("unexpected state after toggle off: %+v", result)
	}

	// NONE → DOWN → UP（反向直接切换）
	if _, err = env.votes.CastVote(comment.ID, voter.ID, model.VoteDown); err != nil {
		t.Fatalf("downvote: %v", err)
	}
	result, err = env.votes.CastVote(comment.ID, voter.ID, model.VoteUp)
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if result.State != model.VoteUp || result.Upvotes != 1 || result.Downvotes != 0 || result.TotalVotes != 1 {
		t.Fatalf("unexpected state after flip: %+v", result)
	}
}

func TestCastVoteAggregatesMatchRows(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	voters := []*model.User{
		env.seedUser(t, model.RoleUser),
		env.seedUser(t, model.RoleUser),
		env.seedUser(t, model.RoleUser),
	}
	if _, err := env.votes.CastVote(comment.ID, voters[0].ID, model.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := env.votes.CastVote(comment.ID, voters[1].ID, model.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := env.votes.CastVote(comment.ID, voters[2].ID, model.VoteDown); err != nil {
		t.Fatalf("vote: %v", err)
	}

	stored, err := env.commentRepo.GetByID(comment.ID)
	if err != nil {
		t.Fatalf("get comment: %v", err)
	}

	// 核心不变式：聚合值等于投票表的权威行数
	var up, down int64
	env.db.Model(&model.Vote{}).Where("comment_id = ? AND vote_type = ?", comment.ID, model.VoteUp).Count(&up)
	env.db.Model(&model.Vote{}).Where("comment_id = ? AND vote_type = ?", comment.ID, model.VoteDown).Count(&down)

	if stored.Upvotes != up || stored.Downvotes != down || stored.TotalVotes != up+down {
		t.Fatalf("aggregates drifted: stored up=%d down=%d total=%d, rows up=%d down=%d",
			stored.Upvotes, stored.Downvotes, stored.TotalVotes, up, down)
	}
	if stored.Upvotes != 2 || stored.Downvotes != 1 {
		t.Fatalf("expected 2 up / 1 down, got %d/%d", stored.Upvotes, stored.Downvotes)
	}
}

func TestCastVoteUpdatesAuthorTotals(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	voter := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	got, _ := env.userRepo.GetByID(author.ID)
	if got.TotalUpvotes != 1 {
		t.Fatalf("expected author total_upvotes 1, got %d", got.TotalUpvotes)
	}

	// 撤票回退累计值
	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	got, _ = env.userRepo.GetByID(author.ID)
	if got.TotalUpvotes != 0 {
		t.Fatalf("expected author total_upvotes back to 0, got %d", got.TotalUpvotes)
	}

	// 撤票的负增量不会把计数打成负数
	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); err != nil {
		t.Fatalf("vote again: %v", err)
	}
	if _, err := env.userRepo.Update(author.ID, map[string]interface{}{"total_upvotes": 0}); err != nil {
		t.Fatalf("reset totals: %v", err)
	}
	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); err != nil {
		t.Fatalf("toggle off again: %v", err)
	}
	got, _ = env.userRepo.GetByID(author.ID)
	if got.TotalUpvotes < 0 {
		t.Fatalf("expected clamped total, got %d", got.TotalUpvotes)
	}
}

func TestCastVoteOnDeletedComment(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	voter := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	if err := env.comments.SoftDelete(comment.ID, author.ID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); !errors.Is(err, ErrCommentDeleted) {
		t.Fatalf("expected ErrCommentDeleted, got %v", err)
	}
}

func TestCastVoteInvalidType(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	voter := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	for _, voteType := range []int16{0, 2, -2} {
		if _, err := env.votes.CastVote(comment.ID, voter.ID, voteType); !errors.Is(err, ErrInvalidVoteType) {
			t.Fatalf("expected ErrInvalidVoteType for %d, got %v", voteType, err)
		}
	}
}

func TestFetchVoters(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	voterA := env.seedUser(t, model.RoleUser)
	voterB := env.seedUser(t, model.RoleUser)
	if _, err := env.votes.CastVote(comment.ID, voterA.ID, model.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := env.votes.CastVote(comment.ID, voterB.ID, model.VoteDown); err != nil {
		t.Fatalf("vote: %v", err)
	}

	data, err := env.votes.FetchVoters(comment.ID, 1, 10)
	if err != nil {
		t.Fatalf("fetch voters: %v", err)
	}
	if data.Total != 2 || len(data.Voters) != 2 {
		t.Fatalf("expected 2 voters, got total=%d len=%d", data.Total, len(data.Voters))
	}
}

func TestFetchMyVote(t *testing.T) {
	env := newTestEnv(t)
	author := env.seedUser(t, model.RoleUser)
	voter := env.seedUser(t, model.RoleUser)
	comment := env.seedComment(t, author.ID, nil, 0)

	// 未投票时状态为 0
	mine, err := env.votes.FetchMyVote(comment.ID, voter.ID)
	if err != nil {
		t.Fatalf("fetch my vote: %v", err)
	}
	if mine.VoteType != 0 || mine.VotedAt != nil {
		t.Fatalf("expected no vote, got %+v", mine)
	}

	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); err != nil {
		t.Fatalf("vote: %v", err)
	}
	mine, err = env.votes.FetchMyVote(comment.ID, voter.ID)
	if err != nil {
		t.Fatalf("fetch my vote: %v", err)
	}
	if mine.VoteType != model.VoteUp || mine.VotedAt == nil {
		t.Fatalf("expected upvote, got %+v", mine)
	}

	// 同向重复投票撤销后回到无投票状态
	if _, err := env.votes.CastVote(comment.ID, voter.ID, model.VoteUp); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	mine, err = env.votes.FetchMyVote(comment.ID, voter.ID)
	if err != nil {
		t.Fatalf("fetch my vote: %v", err)
	}
	if mine.VoteType != 0 {
		t.Fatalf("expected vote cleared, got %+v", mine)
	}

	if _, err := env.votes.FetchMyVote(comment.ID+999, voter.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}
