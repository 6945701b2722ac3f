package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/devhyun/boardwatch/internal/keyword"
	"github.com/devhyun/boardwatch/internal/models"
	"github.com/devhyun/boardwatch/internal/passhash"
)

// CommentService owns comment mutations and the nested-thread reads.
type CommentService struct {
	db       *gorm.DB
	notifier *keyword.Notifier
}

// NewCommentService returns a CommentService. notifier may be nil.
func NewCommentService(db *gorm.DB, notifier *keyword.Notifier) *CommentService {
	return &CommentService{db: db, notifier: notifier}
}

// Create adds a comment to an ACTIVE post. A non-nil parentID makes it
// a reply; the parent must be an ACTIVE top-level comment — replying to
// a reply is rejected so threads stay exactly one level deep.
func (s *CommentService) Create(ctx context.Context, postID uint, content, author, password string, parentID *uint) (*models.Comment, error) {
	if content == "" || author == "" || password == "" {
		return nil, fmt.Errorf("%w: content, author and password are required", ErrValidation)
	}

	var post models.Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", postID, models.StatusActive).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, fmt.Errorf("could not get post: %w", err)
	}

	if parentID != nil {
		var parent models.Comment
		err := s.db.WithContext(ctx).
			Where("id = ? AND status = ?", *parentID, models.StatusActive).
			First(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent comment %d", ErrNotFound, *parentID)
			}
			return nil, fmt.Errorf("could not get parent comment: %w", err)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: cannot reply to a reply", ErrValidation)
		}
	}

	hash, err := passhash.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	comment := &models.Comment{
		PostID:       postID,
		ParentID:     parentID,
		Content:      content,
		AuthorName:   author,
		PasswordHash: hash,
		Status:       models.StatusActive,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("could not create comment: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ContentCreated(keyword.KindComment, comment.ID, comment.Content)
	}

	return comment, nil
}

// SoftDelete marks the caller's comment DELETED. The lookup matches id,
// post and author together, so a wrong author presents as not found
// rather than as a failed password check.
func (s *CommentService) SoftDelete(ctx context.Context, commentID, postID uint, author, password string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).
		Where("id = ? AND post_id = ? AND author_name = ? AND status = ?",
			commentID, postID, author, models.StatusActive).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment %d", ErrNotFound, commentID)
		}
		return nil, fmt.Errorf("could not get comment: %w", err)
	}

	if !passhash.Verify(password, comment.PasswordHash) {
		return nil, ErrUnauthorized
	}

	now := time.Now()
	updates := map[string]any{"status": models.StatusDeleted, "updated_at": now}
	if err := s.db.WithContext(ctx).Model(&comment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("could not delete comment: %w", err)
	}
	comment.Status = models.StatusDeleted
	comment.UpdatedAt = &now
	return &comment, nil
}

// GetNested returns one page of a post's top-level comments, each
// carrying all of its replies. Two independent reads: the parent page
// first, then every ACTIVE reply whose parent is on that page, grouped
// in memory. A reply created between the two reads may be missed; that
// window is accepted, not corrected.
func (s *CommentService) GetNested(ctx context.Context, postID uint, order string, page, size int) ([]models.NestedComment, error) {
	var parents []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL AND status = ?", postID, models.StatusActive).
		Order("id " + orderDir(order)).
		Offset((page - 1) * size).
		Limit(size).
		Find(&parents).Error
	if err != nil {
		return nil, fmt.Errorf("could not get top-level comments: %w", err)
	}
	if len(parents) == 0 {
		return []models.NestedComment{}, nil
	}

	ids := make([]uint, len(parents))
	for i, p := range parents {
		ids[i] = p.ID
	}

	// Replies are not paginated: a parent on this page brings all of
	// its replies, newest first.
	var children []models.Comment
	err = s.db.WithContext(ctx).
		Where("parent_id IN ? AND status = ?", ids, models.StatusActive).
		Order("id desc").
		Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("could not get replies: %w", err)
	}

	byParent := make(map[uint][]models.Comment, len(parents))
	for _, c := range children {
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	nested := make([]models.NestedComment, 0, len(parents))
	for _, p := range parents {
		reply := byParent[p.ID]
		if reply == nil {
			reply = []models.Comment{}
		}
		nested = append(nested, models.NestedComment{Comment: p, Reply: reply})
	}
	return nested, nil
}

// GetList returns one flat page of a post's ACTIVE comments, parents
// and replies alike.
func (s *CommentService) GetList(ctx context.Context, postID uint, order string, page, size int) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, models.StatusActive).
		Order("id " + orderDir(order)).
		Offset((page - 1) * size).
		Limit(size).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("could not list comments: %w", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// Counts returns the ACTIVE comment count per post in one grouped
// query. Posts with no comments are simply absent from the map.
func (s *CommentService) Counts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(id) AS total").
		Where("post_id IN ? AND status = ?", postIDs, models.StatusActive).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not count comments: %w", err)
	}

	for _, r := range rows {
		counts[r.PostID] = r.Total
	}
	return counts, nil
}
