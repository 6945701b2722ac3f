package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devhyun/boardwatch/internal/models"
	"github.com/devhyun/boardwatch/internal/passhash"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: would get its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.Comment{}, &models.Keyword{}))
	return db
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful creation", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)

		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.Equal(t, "a", post.AuthorName)
		assert.Equal(t, models.StatusActive, post.Status)
		assert.Nil(t, post.UpdatedAt)

		got, err := svc.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "a", got.AuthorName)
		assert.Equal(t, models.StatusActive, got.Status)
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("Password is stored hashed", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPostService(db, nil)

		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		var stored models.Post
		require.NoError(t, db.First(&stored, post.ID).Error)
		assert.NotEqual(t, "p", stored.PasswordHash)
		assert.True(t, passhash.Verify("p", stored.PasswordHash))
	})

	t.Run("Empty required field fails without persisting", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPostService(db, nil)

		cases := [][4]string{
			{"", "c", "a", "p"},
			{"t", "", "a", "p"},
			{"t", "c", "", "p"},
			{"t", "c", "a", ""},
		}
		for _, c := range cases {
			_, err := svc.Create(ctx, c[0], c[1], c[2], c[3])
			assert.ErrorIs(t, err, ErrValidation)
		}

		var count int64
		require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestPostService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown id is not found", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		_, err := svc.GetByID(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Deleted post is not found", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)

		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)
		_, err = svc.SoftDelete(ctx, post.ID, "a", "p")
		require.NoError(t, err)

		_, err = svc.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostService_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewPostService(db, nil)

	mustCreate := func(title, author string) *models.Post {
		post, err := svc.Create(ctx, title, "content", author, "p")
		require.NoError(t, err)
		return post
	}

	first := mustCreate("hello world", "alice")
	second := mustCreate("go tips", "bob")
	third := mustCreate("more go tips", "alice")

	t.Run("Default order is newest first", func(t *testing.T) {
		posts, err := svc.List(ctx, ListFilter{}, 1, 10)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, third.ID, posts[0].ID)
		assert.Equal(t, first.ID, posts[2].ID)
	})

	t.Run("Ascending order", func(t *testing.T) {
		posts, err := svc.List(ctx, ListFilter{Order: "asc"}, 1, 10)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, first.ID, posts[0].ID)
	})

	t.Run("Title substring filter", func(t *testing.T) {
		posts, err := svc.List(ctx, ListFilter{Title: "go tips"}, 1, 10)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, third.ID, posts[0].ID)
		assert.Equal(t, second.ID, posts[1].ID)
	})

	t.Run("Author substring filter", func(t *testing.T) {
		posts, err := svc.List(ctx, ListFilter{Author: "lice"}, 1, 10)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("Pagination", func(t *testing.T) {
		posts, err := svc.List(ctx, ListFilter{}, 2, 2)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, first.ID, posts[0].ID)
	})

	t.Run("Deleted posts never listed", func(t *testing.T) {
		_, err := svc.SoftDelete(ctx, second.ID, "bob", "p")
		require.NoError(t, err)

		posts, err := svc.List(ctx, ListFilter{}, 1, 10)
		require.NoError(t, err)
		for _, p := range posts {
			assert.NotEqual(t, second.ID, p.ID)
		}
	})

	t.Run("Empty result is an empty slice", func(t *testing.T) {
		posts, err := svc.List(ctx, ListFilter{Title: "no such title"}, 1, 10)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}

func TestPostService_Edit(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty patch is rejected before any lookup", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		// Post 999 does not exist; validation must fire first.
		_, err := svc.Edit(ctx, 999, "a", "p", EditPatch{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Unknown post is not found", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		_, err := svc.Edit(ctx, 999, "a", "p", EditPatch{Title: "new"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Wrong author is not found", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		_, err = svc.Edit(ctx, post.ID, "someone", "p", EditPatch{Title: "new"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		_, err = svc.Edit(ctx, post.ID, "a", "wrong", EditPatch{Title: "new"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Partial edit only touches provided fields", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		edited, err := svc.Edit(ctx, post.ID, "a", "p", EditPatch{Title: "new title"})
		require.NoError(t, err)
		assert.Equal(t, "new title", edited.Title)
		assert.Equal(t, "c", edited.Content)
		require.NotNil(t, edited.UpdatedAt)

		got, err := svc.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "new title", got.Title)
		assert.Equal(t, "c", got.Content)
		assert.NotNil(t, got.UpdatedAt)
	})
}

func TestPostService_SoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete hides the post and refreshes updated_at", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		deleted, err := svc.SoftDelete(ctx, post.ID, "a", "p")
		require.NoError(t, err)
		assert.Equal(t, models.StatusDeleted, deleted.Status)
		assert.NotNil(t, deleted.UpdatedAt)

		_, err = svc.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Row is retained in storage", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewPostService(db, nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)
		_, err = svc.SoftDelete(ctx, post.ID, "a", "p")
		require.NoError(t, err)

		var stored models.Post
		require.NoError(t, db.First(&stored, post.ID).Error)
		assert.Equal(t, models.StatusDeleted, stored.Status)
	})

	t.Run("Deleting twice fails with not found", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		_, err = svc.SoftDelete(ctx, post.ID, "a", "p")
		require.NoError(t, err)
		_, err = svc.SoftDelete(ctx, post.ID, "a", "p")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		svc := NewPostService(newTestDB(t), nil)
		post, err := svc.Create(ctx, "t", "c", "a", "p")
		require.NoError(t, err)

		_, err = svc.SoftDelete(ctx, post.ID, "a", "wrong")
		assert.ErrorIs(t, err, ErrUnauthorized)

		// The failed attempt must not have changed anything.
		got, err := svc.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, got.Status)
	})
}
