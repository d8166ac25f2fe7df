package blogtracker

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for users, blogs, categories,
// tags and the blog-tag association.
//
// Implementations must enforce the composite uniqueness invariants at the
// storage layer: (UserID, Name) for categories (names arrive normalized) and
// (UserID, Name) for tags. Violations surface as ErrDuplicateCategory /
// ErrDuplicateTag / ErrDuplicateUser so callers can retry as a lookup.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Blog operations. GetBlog and ListBlogs return bare rows; tag sets and
	// category objects are assembled by the service layer.
	CreateBlog(ctx context.Context, blog *Blog) error
	GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error)
	ListBlogs(ctx context.Context, userID uuid.UUID, filters BlogListFilters) ([]*Blog, error)
	UpdateBlog(ctx context.Context, blog *Blog) error
	// DeleteBlog removes the blog and cascades its association rows. Tag and
	// category rows are never touched.
	DeleteBlog(ctx context.Context, id uuid.UUID) error

	// Category operations
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	// DeleteCategory clears CategoryID on all referencing blogs, then removes
	// the category row.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)

	// Tag operations
	CreateTag(ctx context.Context, tag *Tag) error
	GetTag(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	ListTags(ctx context.Context, userID uuid.UUID) ([]*Tag, error)

	// Blog-tag association operations. AttachTag and DetachTag are
	// idempotent: attaching an attached tag or detaching a detached one is a
	// no-op, not an error. ListBlogTags returns tags in the order they were
	// attached.
	AttachTag(ctx context.Context, blogID, tagID uuid.UUID) error
	DetachTag(ctx context.Context, blogID, tagID uuid.UUID) error
	ListBlogTags(ctx context.Context, blogID uuid.UUID) ([]*Tag, error)
	CountBlogsWithTag(ctx context.Context, tagID uuid.UUID) (int, error)

	// WithTx runs fn against a transactional view of the repository. If fn
	// returns an error the transaction is rolled back and nothing fn did is
	// observable.
	WithTx(ctx context.Context, fn func(Repository) error) error
}
