package models

import "time"

// Entity status values. Deleted rows stay in storage but are excluded
// from every read path.
const (
	StatusActive  = "ACTIVE"
	StatusDeleted = "DELETED"
)

// Post is a board post. Ownership is proven per request by checking a
// plaintext password against PasswordHash; there are no accounts.
type Post struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Title        string     `gorm:"size:80;not null" json:"title"`
	Content      string     `gorm:"not null" json:"content"`
	AuthorName   string     `gorm:"size:10;not null;index" json:"author_name"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Status       string     `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// Comment belongs to a post. A non-nil ParentID marks it as a reply to a
// top-level comment; replies never nest deeper than one level. That is a
// policy enforced by the create path, not a schema constraint.
type Comment struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	PostID       uint       `gorm:"not null;index" json:"post_id"`
	ParentID     *uint      `gorm:"index" json:"parent_id"`
	Content      string     `gorm:"not null" json:"content"`
	AuthorName   string     `gorm:"size:10;not null" json:"author_name"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Status       string     `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// NestedComment is a top-level comment carrying its replies. Reply is
// always non-nil, even when empty.
type NestedComment struct {
	Comment
	Reply []Comment `json:"reply"`
}

// Keyword is one watch registration: AuthorName wants an alarm whenever
// new content contains Keyword. Rows are loaded once at startup into the
// in-memory watch cache and never change at runtime.
type Keyword struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Keyword    string `gorm:"size:80;not null;index" json:"keyword"`
	AuthorName string `gorm:"size:10;not null" json:"author_name"`
}
