package blogtracker

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the blogs-tracker library.
//
// Every entity is owned exclusively by one user, so operations addressing an
// entity by ID also take the caller's user ID. Addressing another user's
// entity answers with the same not-found error as a nonexistent one; whether
// a foreign ID exists is never revealed.
type Service interface {
	// User operations
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error)
	AuthenticateUser(ctx context.Context, req AuthenticateUserRequest) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	// Blog lifecycle operations
	CreateBlog(ctx context.Context, req CreateBlogRequest) (*Blog, error)
	GetBlog(ctx context.Context, userID, id uuid.UUID) (*Blog, error)
	ListBlogs(ctx context.Context, req ListBlogsRequest) ([]*Blog, error)
	UpdateBlogStatus(ctx context.Context, req UpdateBlogStatusRequest) error
	DeleteBlog(ctx context.Context, userID, id uuid.UUID) error

	// Category operations. ResolveCategory finds-or-creates the category for
	// a free-text name; a blank name resolves to (nil, nil).
	ResolveCategory(ctx context.Context, userID uuid.UUID, rawName string) (*Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	RenameCategory(ctx context.Context, req RenameCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)

	// Tag operations. AddTag and RemoveTag return the blog with its full
	// current tag set.
	AddTag(ctx context.Context, req AddTagRequest) (*Blog, error)
	RemoveTag(ctx context.Context, userID, blogID, tagID uuid.UUID) (*Blog, error)
	DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error
	ListTags(ctx context.Context, userID uuid.UUID) ([]*Tag, error)
}
