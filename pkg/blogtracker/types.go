package blogtracker

import (
	"time"

	"github.com/google/uuid"
)

// User owns blogs, categories and tags. The password hash is an encoded
// argon2id string produced by the auth package.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category is a per-user folder for blogs. Name is stored normalized
// (lowercase, trimmed); (UserID, Name) is unique.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a per-user label attachable to many blogs. Name is stored trimmed
// with case preserved; (UserID, Name) is unique.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Blog is a saved link. CategoryID is a weak reference: deleting the
// category clears it rather than deleting the blog. Tags holds the current
// tag set in association insertion order; it is populated by the service
// layer and not persisted on the blog row itself.
type Blog struct {
	ID         uuid.UUID  `json:"id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	IsRead     bool       `json:"is_read"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Tags     []*Tag    `json:"tags,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// BlogListFilters narrows ListBlogs results. Nil fields match everything.
type BlogListFilters struct {
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	IsRead     *bool
}
