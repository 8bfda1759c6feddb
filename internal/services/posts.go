package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"panda/internal/apperrors"
	"panda/internal/models"
	"panda/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListFilter narrows a post listing. A zero Limit means DefaultListLimit.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// PostInput carries the mutable fields of a post. A nil Published means true.
type PostInput struct {
	Title     string
	Content   string
	Published *bool
}

// PostWithVotes is a post together with its current vote count.
type PostWithVotes struct {
	Post  models.Post `json:"post"`
	Votes int64       `json:"votes"`
}

// PostService reads and mutates posts. Owner-scoped operations pass through
// requireOwner after the existence check.
type PostService struct {
	db     *gorm.DB
	votes  *VoteService
	logger *slog.Logger
}

func NewPostService(db *gorm.DB, votes *VoteService, logger *slog.Logger) *PostService {
	return &PostService{db: db, votes: votes, logger: resolveLogger(logger)}
}

// requireOwner is the authorization gate for post mutations and owner-scoped reads.
func requireOwner(actor *models.User, post *models.Post) error {
	if actor == nil {
		return apperrors.ErrUnauthenticated
	}
	if actor.ID != post.OwnerID {
		return fmt.Errorf("%w: post %d belongs to another user", apperrors.ErrForbidden, post.ID)
	}
	return nil
}

// List returns posts newest first with their vote counts.
func (s *PostService) List(ctx context.Context, f ListFilter) ([]PostWithVotes, error) {
	limit := f.Limit
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidArgument)
	case limit == 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if f.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", apperrors.ErrInvalidArgument)
	}

	q := s.db.WithContext(ctx).Preload("Owner")
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var posts []models.Post
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, logError(s.logger, "post_list", err, "search", f.Search)
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	counts, err := s.votes.Counts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PostWithVotes, len(posts))
	for i := range posts {
		render(&posts[i])
		out[i] = PostWithVotes{Post: posts[i], Votes: counts[posts[i].ID]}
	}
	return out, nil
}

// Get returns one post owned by actor with its vote count.
func (s *PostService) Get(ctx context.Context, id uint, actor *models.User) (PostWithVotes, error) {
	post, err := s.find(s.db.WithContext(ctx).Preload("Owner"), id)
	if err != nil {
		return PostWithVotes{}, err
	}
	if err := requireOwner(actor, post); err != nil {
		return PostWithVotes{}, err
	}

	votes, err := s.votes.Count(ctx, id)
	if err != nil {
		return PostWithVotes{}, err
	}
	render(post)
	return PostWithVotes{Post: *post, Votes: votes}, nil
}

// Create stores a new post owned by actor.
func (s *PostService) Create(ctx context.Context, in PostInput, actor *models.User) (*models.Post, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	title, content, err := validatePost(in)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:     title,
		Content:   content,
		Published: published(in.Published),
		OwnerID:   actor.ID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, logError(s.logger, "post_create", err, "owner_id", actor.ID)
	}

	post.Owner = *actor
	render(&post)
	return &post, nil
}

// Update replaces title, content and published of a post owned by actor.
func (s *PostService) Update(ctx context.Context, id uint, in PostInput, actor *models.User) (*models.Post, error) {
	title, content, err := validatePost(in)
	if err != nil {
		return nil, err
	}

	var updated models.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, current); err != nil {
			return err
		}

		err = tx.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]any{
			"title":     title,
			"content":   content,
			"published": published(in.Published),
		}).Error
		if err != nil {
			return logError(s.logger, "post_update", err, "post_id", id)
		}
		return tx.Preload("Owner").First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}

	render(&updated)
	return &updated, nil
}

// Delete removes a post owned by actor together with its votes.
func (s *PostService) Delete(ctx context.Context, id uint, actor *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if err := requireOwner(actor, current); err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return logError(s.logger, "post_delete_votes", err, "post_id", id)
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return logError(s.logger, "post_delete", err, "post_id", id)
		}
		return nil
	})
}

// Latest returns the most recently created post, or nil when there are none.
func (s *PostService) Latest(ctx context.Context) (*models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).Preload("Owner").
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&posts).Error
	if err != nil {
		return nil, logError(s.logger, "post_latest", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	render(&posts[0])
	return &posts[0], nil
}

func (s *PostService) find(q *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := q.First(&post, id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: post with id %d was not found", apperrors.ErrNotFound, id)
		}
		return nil, logError(s.logger, "post_find", err, "post_id", id)
	}
	return &post, nil
}

func validatePost(in PostInput) (string, string, error) {
	title := utils.SanitizeTitle(in.Title)
	if title == "" {
		return "", "", fmt.Errorf("%w: title must not be empty", apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(in.Content) == "" {
		return "", "", fmt.Errorf("%w: content must not be empty", apperrors.ErrInvalidArgument)
	}
	return title, in.Content, nil
}

func published(p *bool) bool {
	if p == nil {
		return true
	}
	return *p
}

func render(p *models.Post) {
	p.ContentHTML = utils.RenderMarkdown(p.Content)
}
