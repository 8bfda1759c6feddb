package services

import (
	"context"
	"fmt"
	"log/slog"

	"panda/internal/apperrors"
	"panda/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Direction is the requested vote transition.
type Direction int

const (
	DirectionDown Direction = 0 // withdraw an existing vote
	DirectionUp   Direction = 1 // cast a vote
)

func (d Direction) Valid() bool {
	return d == DirectionDown || d == DirectionUp
}

// VoteResult describes an applied transition.
type VoteResult struct {
	PostID    uint
	Direction Direction
	Votes     int64
}

// VoteService toggles votes and aggregates vote counts.
type VoteService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewVoteService(db *gorm.DB, logger *slog.Logger) *VoteService {
	return &VoteService{db: db, logger: resolveLogger(logger)}
}

// Apply moves the (postID, userID) pair between NOT_VOTED and VOTED.
// Casting twice is a conflict and withdrawing a missing vote is not found;
// the composite primary key decides races between concurrent casts.
func (s *VoteService) Apply(ctx context.Context, postID, userID uint, dir Direction) (VoteResult, error) {
	if !dir.Valid() {
		return VoteResult{}, fmt.Errorf("%w: dir must be 0 or 1, got %d", apperrors.ErrInvalidArgument, dir)
	}

	result := VoteResult{PostID: postID, Direction: dir}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return logError(s.logger, "vote_post_lookup", err, "post_id", postID)
		}
		if exists == 0 {
			return fmt.Errorf("%w: post with id %d does not exist", apperrors.ErrNotFound, postID)
		}

		switch dir {
		case DirectionUp:
			vote := models.Vote{PostID: postID, UserID: userID}
			err := tx.Omit(clause.Associations).Create(&vote).Error
			switch {
			case isUniqueViolation(err):
				return fmt.Errorf("%w: user %d has already voted on post %d", apperrors.ErrConflict, userID, postID)
			case isForeignKeyViolation(err):
				// post removed after the existence check
				return fmt.Errorf("%w: post with id %d does not exist", apperrors.ErrNotFound, postID)
			case err != nil:
				return logError(s.logger, "vote_insert", err, "post_id", postID, "user_id", userID)
			}
		case DirectionDown:
			res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Vote{})
			if res.Error != nil {
				return logError(s.logger, "vote_delete", res.Error, "post_id", postID, "user_id", userID)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: vote does not exist", apperrors.ErrNotFound)
			}
		}

		if err := tx.Model(&models.Vote{}).Where("post_id = ?", postID).Count(&result.Votes).Error; err != nil {
			return logError(s.logger, "vote_count", err, "post_id", postID)
		}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}
	return result, nil
}

// Count returns the number of votes on postID.
func (s *VoteService) Count(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).Where("post_id = ?", postID).Count(&n).Error
	if err != nil {
		return 0, logError(s.logger, "vote_count", err, "post_id", postID)
	}
	return n, nil
}

// Counts returns vote counts for postIDs in one grouped query.
// Posts without votes are absent from the map.
func (s *VoteService) Counts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type voteCount struct {
		PostID uint
		Votes  int64
	}
	var rows []voteCount
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Select("post_id, COUNT(*) AS votes").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, logError(s.logger, "vote_counts", err, "posts", len(postIDs))
	}
	for _, r := range rows {
		counts[r.PostID] = r.Votes
	}
	return counts, nil
}
