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

// PostService owns every mutation of posts. Edits and deletes re-verify
// ownership against the stored password hash on each call; there is no
// session to carry trust between requests.
type PostService struct {
	db       *gorm.DB
	notifier *keyword.Notifier
}

// NewPostService returns a PostService. notifier may be nil, in which
// case no keyword events are emitted.
func NewPostService(db *gorm.DB, notifier *keyword.Notifier) *PostService {
	return &PostService{db: db, notifier: notifier}
}

// ListFilter narrows List results. Title and Author are optional
// substring matches; Order is "asc" or "desc" (default desc).
type ListFilter struct {
	Title  string
	Author string
	Order  string
}

// EditPatch carries the fields an edit may change. Empty fields are
// left untouched; an all-empty patch is rejected.
type EditPatch struct {
	Title   string
	Content string
}

func (s *PostService) Create(ctx context.Context, title, content, author, password string) (*models.Post, error) {
	if title == "" || content == "" || author == "" || password == "" {
		return nil, fmt.Errorf("%w: title, content, author and password are required", ErrValidation)
	}

	hash, err := passhash.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	post := &models.Post{
		Title:        title,
		Content:      content,
		AuthorName:   author,
		PasswordHash: hash,
		Status:       models.StatusActive,
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ContentCreated(keyword.KindPost, post.ID, post.Content)
	}

	return post, nil
}

// GetByID returns the ACTIVE post with the given id. Soft-deleted posts
// present as not found.
func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.StatusActive).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("could not get post: %w", err)
	}
	return &post, nil
}

func (s *PostService) List(ctx context.Context, f ListFilter, page, size int) ([]models.Post, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.StatusActive)
	if f.Title != "" {
		q = q.Where("title LIKE ?", "%"+f.Title+"%")
	}
	if f.Author != "" {
		q = q.Where("author_name LIKE ?", "%"+f.Author+"%")
	}

	var posts []models.Post
	err := q.Order("id " + orderDir(f.Order)).
		Offset((page - 1) * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("could not list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Edit applies the non-empty patch fields to the caller's post. The
// empty-patch check runs before any lookup.
func (s *PostService) Edit(ctx context.Context, id uint, author, password string, patch EditPatch) (*models.Post, error) {
	if patch.Title == "" && patch.Content == "" {
		return nil, fmt.Errorf("%w: nothing to edit", ErrValidation)
	}

	post, err := s.verifyOwner(ctx, id, author, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]any{"updated_at": now}
	if patch.Title != "" {
		updates["title"] = patch.Title
		post.Title = patch.Title
	}
	if patch.Content != "" {
		updates["content"] = patch.Content
		post.Content = patch.Content
	}

	if err := s.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("could not update post: %w", err)
	}
	post.UpdatedAt = &now
	return post, nil
}

// SoftDelete marks the caller's post DELETED. The transition is
// terminal: deleting an already-deleted post fails with not found.
func (s *PostService) SoftDelete(ctx context.Context, id uint, author, password string) (*models.Post, error) {
	post, err := s.verifyOwner(ctx, id, author, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]any{"status": models.StatusDeleted, "updated_at": now}
	if err := s.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("could not delete post: %w", err)
	}
	post.Status = models.StatusDeleted
	post.UpdatedAt = &now
	return post, nil
}

// verifyOwner looks up the ACTIVE post owned by author and checks the
// password against its stored hash. This runs immediately before every
// mutation, never once per session.
func (s *PostService) verifyOwner(ctx context.Context, id uint, author, password string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND author_name = ? AND status = ?", id, author, models.StatusActive).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("could not get post: %w", err)
	}

	if !passhash.Verify(password, post.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return &post, nil
}

func orderDir(order string) string {
	if order == "asc" {
		return "asc"
	}
	return "desc"
}
