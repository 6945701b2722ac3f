package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/devhyun/boardwatch/internal/models"
	"github.com/devhyun/boardwatch/internal/service"
)

const (
	defaultPageSize = 10
	rateLimitRPS    = 1.0
	rateLimitBurst  = 5
)

// --- Structs for request binding ---
// Binding enforces the field caps (title <= 80, author <= 10, page >= 1,
// enum values) before the services run; the services only re-check
// emptiness.

type CreatePostInput struct {
	Title    string `json:"title" binding:"required,max=80"`
	Content  string `json:"content" binding:"required"`
	Author   string `json:"author" binding:"required,max=10"`
	Password string `json:"password" binding:"required"`
}

type EditPostInput struct {
	Author   string `json:"author" binding:"required,max=10"`
	Password string `json:"password" binding:"required"`
	Title    string `json:"title" binding:"omitempty,max=80"`
	Content  string `json:"content"`
}

// OwnerInput is the body of both delete endpoints.
type OwnerInput struct {
	Author   string `json:"author" binding:"required,max=10"`
	Password string `json:"password" binding:"required"`
}

type CreateCommentInput struct {
	Content  string `json:"content" binding:"required"`
	Author   string `json:"author" binding:"required,max=10"`
	Password string `json:"password" binding:"required"`
	// CommentID names the parent when creating a reply.
	CommentID *uint `json:"comment_id" binding:"omitempty,min=1"`
}

type ListPostsQuery struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	SearchType string `form:"search_type" binding:"omitempty,oneof=title author"`
	Keyword    string `form:"keyword"`
	Order      string `form:"order,default=desc" binding:"oneof=asc desc"`
}

type CommentListQuery struct {
	Page  int    `form:"page,default=1" binding:"min=1"`
	Order string `form:"order,default=desc" binding:"oneof=asc desc"`
}

// PostListItem annotates a post with its ACTIVE comment count.
type PostListItem struct {
	models.Post
	CommentCount int64 `json:"comment_count"`
}

// --- Rate Limiter ---

type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      r,
		burst:    b,
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}

func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please wait."})
			return
		}
		c.Next()
	}
}

// --- Handlers ---

type Env struct {
	Posts    *service.PostService
	Comments *service.CommentService
}

func (e *Env) GetPosts(c *gin.Context) {
	var q ListPostsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	filter := service.ListFilter{Order: q.Order}
	switch q.SearchType {
	case "title":
		filter.Title = q.Keyword
	case "author":
		filter.Author = q.Keyword
	}

	posts, err := e.Posts.List(c.Request.Context(), filter, q.Page, defaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := e.Comments.Counts(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]PostListItem, len(posts))
	for i, p := range posts {
		items[i] = PostListItem{Post: p, CommentCount: counts[p.ID]}
	}
	c.JSON(http.StatusOK, items)
}

func (e *Env) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	post, err := e.Posts.Create(c.Request.Context(), input.Title, input.Content, input.Author, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": post.ID})
}

func (e *Env) GetPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := e.Posts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	counts, err := e.Comments.Counts(c.Request.Context(), []uint{post.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PostListItem{Post: *post, CommentCount: counts[post.ID]})
}

func (e *Env) EditPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input EditPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	patch := service.EditPatch{Title: input.Title, Content: input.Content}
	post, err := e.Posts.Edit(c.Request.Context(), id, input.Author, input.Password, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	// Only the fields that actually changed go back to the caller.
	resp := gin.H{"updated_at": post.UpdatedAt}
	if input.Title != "" {
		resp["title"] = post.Title
	}
	if input.Content != "" {
		resp["content"] = post.Content
	}
	c.JSON(http.StatusOK, resp)
}

func (e *Env) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input OwnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if _, err := e.Posts.SoftDelete(c.Request.Context(), id, input.Author, input.Password); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (e *Env) GetComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var q CommentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	comments, err := e.Comments.GetNested(c.Request.Context(), id, q.Order, q.Page, defaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (e *Env) CreateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	comment, err := e.Comments.Create(c.Request.Context(), id, input.Content, input.Author, input.Password, input.CommentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": comment.ID})
}

func (e *Env) DeleteComment(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	var input OwnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if _, err := e.Comments.SoftDelete(c.Request.Context(), commentID, postID, input.Author, input.Password); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors onto client statuses. A password
// mismatch is reported as a bad request, matching the upstream API
// contract. Anything unexpected is logged and hidden behind a generic
// server error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
