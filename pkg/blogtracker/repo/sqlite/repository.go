// Package sqlite implements blogtracker.Repository on an embedded SQLite
// database (modernc.org/sqlite, no cgo). It mirrors the PostgreSQL schema:
// composite unique indexes arbitrate find-or-create races, category
// references use ON DELETE SET NULL, association rows cascade with their
// blog only. A tag that is still attached cannot be deleted; the foreign
// key refuses it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username);

CREATE TABLE IF NOT EXISTS categories (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS categories_user_id_name_key ON categories (user_id, name);

CREATE TABLE IF NOT EXISTS tags (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS tags_user_id_name_key ON tags (user_id, name);

CREATE TABLE IF NOT EXISTS blogs (
    id          TEXT PRIMARY KEY,
    author_id   TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    url         TEXT NOT NULL,
    title       TEXT NOT NULL,
    is_read     BOOLEAN NOT NULL DEFAULT 0,
    category_id TEXT REFERENCES categories (id) ON DELETE SET NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS blogs_author_id_idx ON blogs (author_id);

CREATE TABLE IF NOT EXISTS blog_tags (
    blog_id TEXT NOT NULL REFERENCES blogs (id) ON DELETE CASCADE,
    tag_id  TEXT NOT NULL REFERENCES tags (id),
    PRIMARY KEY (blog_id, tag_id)
);
CREATE INDEX IF NOT EXISTS blog_tags_tag_id_idx ON blog_tags (tag_id);
`

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Repository implements blogtracker.Repository using SQLite
type Repository struct {
	db   dbtx
	conn *sql.DB
}

// Open opens (and if necessary initializes) a SQLite database at path and
// returns a repository over it. Use ":memory:" for an ephemeral database.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// churn under concurrent requests.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Repository{db: conn, conn: conn}, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// mapError converts driver errors to the package's sentinels. The modernc
// driver reports constraint failures in the message text, including the
// columns of the violated unique index. fkErr is what a foreign key
// violation means for the statement at hand, since SQLite does not name the
// failing constraint.
func mapError(op string, err error, fkErr error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "categories."):
			return blogtracker.ErrDuplicateCategory
		case strings.Contains(msg, "tags."):
			return blogtracker.ErrDuplicateTag
		case strings.Contains(msg, "users."):
			return blogtracker.ErrDuplicateUser
		}
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") && fkErr != nil {
		return fkErr
	}
	return &blogtracker.StoreError{Op: op, Err: err}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *blogtracker.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(), user.Email, user.Username, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapError("create user", err, nil)
	}

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*blogtracker.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at, updated_at
		FROM users WHERE id = ?`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*blogtracker.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at, updated_at
		FROM users WHERE email = ?`

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *Repository) scanUser(row *sql.Row) (*blogtracker.User, error) {
	var user blogtracker.User
	var id string
	err := row.Scan(&id, &user.Email, &user.Username, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blogtracker.ErrUserNotFound
		}
		return nil, mapError("get user", err, nil)
	}
	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, &blogtracker.StoreError{Op: "get user", Err: err}
	}
	return &user, nil
}

// Blog operations

func (r *Repository) CreateBlog(ctx context.Context, blog *blogtracker.Blog) error {
	query := `
		INSERT INTO blogs (id, author_id, url, title, is_read, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		blog.ID.String(), blog.AuthorID.String(), blog.URL, blog.Title, blog.IsRead,
		uuidPtrToString(blog.CategoryID), blog.CreatedAt, blog.UpdatedAt)
	if err != nil {
		return mapError("create blog", err, blogtracker.ErrUserNotFound)
	}

	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*blogtracker.Blog, error) {
	query := `
		SELECT id, author_id, url, title, is_read, category_id, created_at, updated_at
		FROM blogs WHERE id = ?`

	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blogtracker.ErrBlogNotFound
		}
		return nil, err
	}

	return blog, nil
}

func (r *Repository) ListBlogs(ctx context.Context, userID uuid.UUID, filters blogtracker.BlogListFilters) ([]*blogtracker.Blog, error) {
	query := `
		SELECT b.id, b.author_id, b.url, b.title, b.is_read, b.category_id, b.created_at, b.updated_at
		FROM blogs b WHERE b.author_id = ?`
	args := []interface{}{userID.String()}

	if filters.CategoryID != nil {
		query += " AND b.category_id = ?"
		args = append(args, filters.CategoryID.String())
	}
	if filters.IsRead != nil {
		query += " AND b.is_read = ?"
		args = append(args, *filters.IsRead)
	}
	if filters.TagID != nil {
		query += " AND EXISTS (SELECT 1 FROM blog_tags bt WHERE bt.blog_id = b.id AND bt.tag_id = ?)"
		args = append(args, filters.TagID.String())
	}
	query += " ORDER BY b.created_at DESC, b.rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list blogs", err, nil)
	}
	defer rows.Close()

	blogs := []*blogtracker.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	return blogs, rows.Err()
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *blogtracker.Blog) error {
	query := `
		UPDATE blogs SET url = ?, title = ?, is_read = ?, category_id = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		blog.URL, blog.Title, blog.IsRead, uuidPtrToString(blog.CategoryID),
		blog.UpdatedAt, blog.ID.String())
	if err != nil {
		return mapError("update blog", err, blogtracker.ErrCategoryNotFound)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blogtracker.ErrBlogNotFound
	}

	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id.String())
	if err != nil {
		return mapError("delete blog", err, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blogtracker.ErrBlogNotFound
	}

	return nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *blogtracker.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		category.ID.String(), category.UserID.String(), category.Name,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return mapError("create category", err, blogtracker.ErrUserNotFound)
	}

	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*blogtracker.Category, error) {
	query := `SELECT id, user_id, name, created_at, updated_at FROM categories WHERE id = ?`

	return scanCategory(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *Repository) GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*blogtracker.Category, error) {
	query := `SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = ? AND name = ?`

	return scanCategory(r.db.QueryRowContext(ctx, query, userID.String(), name))
}

func (r *Repository) UpdateCategory(ctx context.Context, category *blogtracker.Category) error {
	query := `UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, category.Name, category.UpdatedAt, category.ID.String())
	if err != nil {
		return mapError("update category", err, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blogtracker.ErrCategoryNotFound
	}

	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id.String())
	if err != nil {
		return mapError("delete category", err, nil)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blogtracker.ErrCategoryNotFound
	}

	return nil
}

func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*blogtracker.Category, error) {
	query := `SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, mapError("list categories", err, nil)
	}
	defer rows.Close()

	categories := []*blogtracker.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// Tag operations

func (r *Repository) CreateTag(ctx context.Context, tag *blogtracker.Tag) error {
	query := `INSERT INTO tags (id, user_id, name, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		tag.ID.String(), tag.UserID.String(), tag.Name, tag.CreatedAt)
	if err != nil {
		return mapError("create tag", err, blogtracker.ErrUserNotFound)
	}

	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*blogtracker.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE id = ?`

	return scanTag(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *Repository) GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*blogtracker.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = ? AND name = ?`

	return scanTag(r.db.QueryRowContext(ctx, query, userID.String(), name))
}

func (r *Repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	// A foreign key failure here means blog_tags rows still reference the
	// tag; the delete must be refused, never cascaded.
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id.String())
	if err != nil {
		return mapError("delete tag", err, blogtracker.ErrTagInUse)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return blogtracker.ErrTagNotFound
	}

	return nil
}

func (r *Repository) ListTags(ctx context.Context, userID uuid.UUID) ([]*blogtracker.Tag, error) {
	query := `SELECT id, user_id, name, created_at FROM tags WHERE user_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, mapError("list tags", err, nil)
	}
	defer rows.Close()

	tags := []*blogtracker.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// Blog-tag association operations

func (r *Repository) AttachTag(ctx context.Context, blogID, tagID uuid.UUID) error {
	query := `
		INSERT INTO blog_tags (blog_id, tag_id)
		VALUES (?, ?)
		ON CONFLICT (blog_id, tag_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, blogID.String(), tagID.String())
	if err != nil {
		return mapError("attach tag", err, blogtracker.ErrTagNotFound)
	}

	return nil
}

func (r *Repository) DetachTag(ctx context.Context, blogID, tagID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blog_tags WHERE blog_id = ? AND tag_id = ?`,
		blogID.String(), tagID.String())
	if err != nil {
		return mapError("detach tag", err, nil)
	}

	return nil
}

func (r *Repository) ListBlogTags(ctx context.Context, blogID uuid.UUID) ([]*blogtracker.Tag, error) {
	// rowid preserves attach order.
	query := `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM blog_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.blog_id = ?
		ORDER BY bt.rowid`

	rows, err := r.db.QueryContext(ctx, query, blogID.String())
	if err != nil {
		return nil, mapError("list blog tags", err, nil)
	}
	defer rows.Close()

	tags := []*blogtracker.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (r *Repository) CountBlogsWithTag(ctx context.Context, tagID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_tags WHERE tag_id = ?`, tagID.String()).Scan(&count)
	if err != nil {
		return 0, mapError("count blogs with tag", err, nil)
	}

	return count, nil
}

// WithTx runs fn inside a database transaction. Nested calls reuse the
// already-open transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(blogtracker.Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return &blogtracker.StoreError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback()

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &blogtracker.StoreError{Op: "commit tx", Err: err}
	}

	return nil
}

// scan helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBlog(row rowScanner) (*blogtracker.Blog, error) {
	var blog blogtracker.Blog
	var id, authorID string
	var categoryID sql.NullString
	err := row.Scan(&id, &authorID, &blog.URL, &blog.Title, &blog.IsRead,
		&categoryID, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, &blogtracker.StoreError{Op: "scan blog", Err: err}
	}

	if blog.ID, err = uuid.Parse(id); err != nil {
		return nil, &blogtracker.StoreError{Op: "scan blog", Err: err}
	}
	if blog.AuthorID, err = uuid.Parse(authorID); err != nil {
		return nil, &blogtracker.StoreError{Op: "scan blog", Err: err}
	}
	if categoryID.Valid {
		parsed, err := uuid.Parse(categoryID.String)
		if err != nil {
			return nil, &blogtracker.StoreError{Op: "scan blog", Err: err}
		}
		blog.CategoryID = &parsed
	}

	return &blog, nil
}

func scanCategory(row rowScanner) (*blogtracker.Category, error) {
	var category blogtracker.Category
	var id, userID string
	err := row.Scan(&id, &userID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blogtracker.ErrCategoryNotFound
		}
		return nil, &blogtracker.StoreError{Op: "scan category", Err: err}
	}

	if category.ID, err = uuid.Parse(id); err != nil {
		return nil, &blogtracker.StoreError{Op: "scan category", Err: err}
	}
	if category.UserID, err = uuid.Parse(userID); err != nil {
		return nil, &blogtracker.StoreError{Op: "scan category", Err: err}
	}

	return &category, nil
}

func scanTag(row rowScanner) (*blogtracker.Tag, error) {
	var tag blogtracker.Tag
	var id, userID string
	err := row.Scan(&id, &userID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blogtracker.ErrTagNotFound
		}
		return nil, &blogtracker.StoreError{Op: "scan tag", Err: err}
	}

	if tag.ID, err = uuid.Parse(id); err != nil {
		return nil, &blogtracker.StoreError{Op: "scan tag", Err: err}
	}
	if tag.UserID, err = uuid.Parse(userID); err != nil {
		return nil, &blogtracker.StoreError{Op: "scan tag", Err: err}
	}

	return &tag, nil
}

func uuidPtrToString(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
