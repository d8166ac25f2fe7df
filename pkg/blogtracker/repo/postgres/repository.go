package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// DBTX is an interface that allows us to use either a connection pool or a
// transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements blogtracker.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewWithPool creates a new PostgreSQL repository with a connection pool.
// The pool is kept so WithTx can open real transactions.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// newWithTx creates a repository view bound to an open transaction.
func newWithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

// mapError converts driver errors to the package's sentinels. Unique
// violations are matched by constraint name so find-or-create callers can
// retry as a lookup; everything unclassified wraps as StoreError.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch {
			case strings.Contains(pgErr.ConstraintName, "categories"):
				return blogtracker.ErrDuplicateCategory
			case strings.Contains(pgErr.ConstraintName, "tags"):
				return blogtracker.ErrDuplicateTag
			case strings.Contains(pgErr.ConstraintName, "users"):
				return blogtracker.ErrDuplicateUser
			}
		case "23503": // foreign_key_violation
			switch {
			case strings.Contains(pgErr.ConstraintName, "author_id"), strings.Contains(pgErr.ConstraintName, "user_id"):
				return blogtracker.ErrUserNotFound
			case strings.Contains(pgErr.ConstraintName, "category_id"):
				return blogtracker.ErrCategoryNotFound
			case strings.Contains(pgErr.ConstraintName, "blog_id"):
				return blogtracker.ErrBlogNotFound
			case strings.Contains(pgErr.ConstraintName, "tag_id"):
				return blogtracker.ErrTagNotFound
			}
		}
	}
	return &blogtracker.StoreError{Op: op, Err: err}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *blogtracker.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapError("create user", err)
	}

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*blogtracker.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at, updated_at
		FROM users WHERE id = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*blogtracker.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at, updated_at
		FROM users WHERE email = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) scanUser(row pgx.Row) (*blogtracker.User, error) {
	var user blogtracker.User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogtracker.ErrUserNotFound
		}
		return nil, mapError("get user", err)
	}
	return &user, nil
}

// Blog operations

func (r *Repository) CreateBlog(ctx context.Context, blog *blogtracker.Blog) error {
	query := `
		INSERT INTO blogs (id, author_id, url, title, is_read, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		blog.ID, blog.AuthorID, blog.URL, blog.Title, blog.IsRead,
		blog.CategoryID, blog.CreatedAt, blog.UpdatedAt)
	if err != nil {
		return mapError("create blog", err)
	}

	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*blogtracker.Blog, error) {
	query := `
		SELECT id, author_id, url, title, is_read, category_id, created_at, updated_at
		FROM blogs WHERE id = $1`

	var blog blogtracker.Blog
	err := r.db.QueryRow(ctx, query, id).Scan(
		&blog.ID, &blog.AuthorID, &blog.URL, &blog.Title, &blog.IsRead,
		&blog.CategoryID, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogtracker.ErrBlogNotFound
		}
		return nil, mapError("get blog", err)
	}

	return &blog, nil
}

func (r *Repository) ListBlogs(ctx context.Context, userID uuid.UUID, filters blogtracker.BlogListFilters) ([]*blogtracker.Blog, error) {
	query := `
		SELECT b.id, b.author_id, b.url, b.title, b.is_read, b.category_id, b.created_at, b.updated_at
		FROM blogs b WHERE b.author_id = $1`
	args := []interface{}{userID}

	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		query += fmt.Sprintf(" AND b.category_id = $%d", len(args))
	}
	if filters.IsRead != nil {
		args = append(args, *filters.IsRead)
		query += fmt.Sprintf(" AND b.is_read = $%d", len(args))
	}
	if filters.TagID != nil {
		args = append(args, *filters.TagID)
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM blog_tags bt WHERE bt.blog_id = b.id AND bt.tag_id = $%d)", len(args))
	}
	query += " ORDER BY b.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list blogs", err)
	}
	defer rows.Close()

	blogs := []*blogtracker.Blog{}
	for rows.Next() {
		var blog blogtracker.Blog
		if err := rows.Scan(
			&blog.ID, &blog.AuthorID, &blog.URL, &blog.Title, &blog.IsRead,
			&blog.CategoryID, &blog.CreatedAt, &blog.UpdatedAt); err != nil {
			return nil, mapError("list blogs", err)
		}
		blogs = append(blogs, &blog)
	}

	return blogs, rows.Err()
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *blogtracker.Blog) error {
	query := `
		UPDATE blogs SET url = $2, title = $3, is_read = $4, category_id = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		blog.ID, blog.URL, blog.Title, blog.IsRead, blog.CategoryID, blog.UpdatedAt)
	if err != nil {
		return mapError("update blog", err)
	}
	if tag.RowsAffected() == 0 {
		return blogtracker.ErrBlogNotFound
	}

	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	// blog_tags rows go via ON DELETE CASCADE.
	tag, err := r.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return mapError("delete blog", err)
	}
	if tag.RowsAffected() == 0 {
		return blogtracker.ErrBlogNotFound
	}

	return nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *blogtracker.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		category.ID, category.UserID, category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return mapError("create category", err)
	}

	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*blogtracker.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories WHERE id = $1`

	return r.scanCategory(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*blogtracker.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories WHERE user_id = $1 AND name = $2`

	return r.scanCategory(r.db.QueryRow(ctx, query, userID, name))
}

func (r *Repository) scanCategory(row pgx.Row) (*blogtracker.Category, error) {
	var category blogtracker.Category
	err := row.Scan(&category.ID, &category.UserID, &category.Name,
		&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogtracker.ErrCategoryNotFound
		}
		return nil, mapError("get category", err)
	}
	return &category, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *blogtracker.Category) error {
	query := `
		UPDATE categories SET name = $2, updated_at = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, category.ID, category.Name, category.UpdatedAt)
	if err != nil {
		return mapError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return blogtracker.ErrCategoryNotFound
	}

	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	// Referencing blogs are cleared by ON DELETE SET NULL.
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return blogtracker.ErrCategoryNotFound
	}

	return nil
}

func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*blogtracker.Category, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	categories := []*blogtracker.Category{}
	for rows.Next() {
		var category blogtracker.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name,
			&category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, mapError("list categories", err)
		}
		categories = append(categories, &category)
	}

	return categories, rows.Err()
}

// Tag operations

func (r *Repository) CreateTag(ctx context.Context, tag *blogtracker.Tag) error {
	query := `
		INSERT INTO tags (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, tag.ID, tag.UserID, tag.Name, tag.CreatedAt)
	if err != nil {
		return mapError("create tag", err)
	}

	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*blogtracker.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE id = $1`

	return r.scanTag(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*blogtracker.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 AND name = $2`

	return r.scanTag(r.db.QueryRow(ctx, query, userID, name))
}

func (r *Repository) scanTag(row pgx.Row) (*blogtracker.Tag, error) {
	var tag blogtracker.Tag
	err := row.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogtracker.ErrTagNotFound
		}
		return nil, mapError("get tag", err)
	}
	return &tag, nil
}

func (r *Repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		// blog_tags.tag_id carries no cascade, so a foreign key violation
		// here means the tag is still attached somewhere.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return blogtracker.ErrTagInUse
		}
		return mapError("delete tag", err)
	}
	if tag.RowsAffected() == 0 {
		return blogtracker.ErrTagNotFound
	}

	return nil
}

func (r *Repository) ListTags(ctx context.Context, userID uuid.UUID) ([]*blogtracker.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list tags", err)
	}
	defer rows.Close()

	tags := []*blogtracker.Tag{}
	for rows.Next() {
		var tag blogtracker.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, mapError("list tags", err)
		}
		tags = append(tags, &tag)
	}

	return tags, rows.Err()
}

// Blog-tag association operations

func (r *Repository) AttachTag(ctx context.Context, blogID, tagID uuid.UUID) error {
	// ON CONFLICT DO NOTHING makes re-attaching idempotent.
	query := `
		INSERT INTO blog_tags (blog_id, tag_id, attached_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (blog_id, tag_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, blogID, tagID)
	if err != nil {
		return mapError("attach tag", err)
	}

	return nil
}

func (r *Repository) DetachTag(ctx context.Context, blogID, tagID uuid.UUID) error {
	// Zero rows affected means the tag was not attached; that is a no-op,
	// not an error.
	_, err := r.db.Exec(ctx, `DELETE FROM blog_tags WHERE blog_id = $1 AND tag_id = $2`, blogID, tagID)
	if err != nil {
		return mapError("detach tag", err)
	}

	return nil
}

func (r *Repository) ListBlogTags(ctx context.Context, blogID uuid.UUID) ([]*blogtracker.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM blog_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.blog_id = $1
		ORDER BY bt.attached_at, t.created_at`

	rows, err := r.db.Query(ctx, query, blogID)
	if err != nil {
		return nil, mapError("list blog tags", err)
	}
	defer rows.Close()

	tags := []*blogtracker.Tag{}
	for rows.Next() {
		var tag blogtracker.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, mapError("list blog tags", err)
		}
		tags = append(tags, &tag)
	}

	return tags, rows.Err()
}

func (r *Repository) CountBlogsWithTag(ctx context.Context, tagID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM blog_tags WHERE tag_id = $1`, tagID).Scan(&count)
	if err != nil {
		return 0, mapError("count blogs with tag", err)
	}

	return count, nil
}

// WithTx runs fn inside a database transaction. Nested calls reuse the
// already-open transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(blogtracker.Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &blogtracker.StoreError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback(ctx)

	if err := fn(newWithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &blogtracker.StoreError{Op: "commit tx", Err: err}
	}

	return nil
}
