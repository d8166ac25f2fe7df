package blogtracker

import "github.com/google/uuid"

// Request DTOs. One typed command per operation; validation rules are
// enforced by the validation stage in validate.go before any store call.

// RegisterUserRequest contains parameters for creating a user account
type RegisterUserRequest struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=2,max=64"`
	Password string `validate:"required,min=8"`
}

// AuthenticateUserRequest contains parameters for an email/password check
type AuthenticateUserRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// CreateBlogRequest contains parameters for saving a link. CategoryName is
// optional free text; blank means the blog is left uncategorized.
type CreateBlogRequest struct {
	AuthorID     uuid.UUID `validate:"required"`
	URL          string    `validate:"required,http_url"`
	Title        string    `validate:"required"`
	IsRead       bool
	CategoryName string
}

// ListBlogsRequest contains parameters for listing a user's blogs
type ListBlogsRequest struct {
	UserID  uuid.UUID `validate:"required"`
	Filters BlogListFilters
}

// UpdateBlogStatusRequest contains parameters for flipping the read flag
type UpdateBlogStatusRequest struct {
	BlogID uuid.UUID `validate:"required"`
	UserID uuid.UUID `validate:"required"`
	IsRead bool
}

// CreateCategoryRequest contains parameters for an explicit category create
type CreateCategoryRequest struct {
	UserID uuid.UUID `validate:"required"`
	Name   string    `validate:"required"`
}

// RenameCategoryRequest contains parameters for renaming a category
type RenameCategoryRequest struct {
	CategoryID uuid.UUID `validate:"required"`
	UserID     uuid.UUID `validate:"required"`
	Name       string    `validate:"required"`
}

// AddTagRequest contains parameters for attaching a tag to a blog. The tag
// is created on first use for that user.
type AddTagRequest struct {
	BlogID uuid.UUID `validate:"required"`
	UserID uuid.UUID `validate:"required"`
	Name   string    `validate:"required"`
}
