package blogtracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker/auth"
)

// service implements the Service interface
type service struct {
	repository Repository
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, errors.New("repository is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// User operations

func (s *service) RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"Password": err.Error()}}
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *service) AuthenticateUser(ctx context.Context, req AuthenticateUserRequest) (*User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	user, err := s.repository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same answer as a wrong password so the API does not leak
			// which emails are registered.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repository.GetUser(ctx, id)
}

// Category operations

// resolveCategory finds-or-creates the category for rawName under userID
// against the given repository view, so it can run inside a transaction. A
// blank name resolves to (nil, nil). When a concurrent caller wins the
// create race, the store's unique index rejects ours and we retry as a
// lookup; a duplicate row is never created.
func resolveCategory(ctx context.Context, repo Repository, userID uuid.UUID, rawName string) (*Category, error) {
	name := NormalizeCategoryName(rawName)
	if name == "" {
		return nil, nil
	}

	category, err := repo.GetCategoryByName(ctx, userID, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	category = &Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = repo.CreateCategory(ctx, category)
	if err == nil {
		return category, nil
	}
	if errors.Is(err, ErrDuplicateCategory) {
		return repo.GetCategoryByName(ctx, userID, name)
	}
	return nil, err
}

func (s *service) ResolveCategory(ctx context.Context, userID uuid.UUID, rawName string) (*Category, error) {
	return resolveCategory(ctx, s.repository, userID, rawName)
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	name := NormalizeCategoryName(req.Name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"Name": "is required"}}
	}

	now := time.Now().UTC()
	category := &Category{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateCategory(ctx, category); err != nil {
		return nil, &CategoryError{CategoryID: category.ID, Op: "create", Err: err}
	}

	return category, nil
}

func (s *service) RenameCategory(ctx context.Context, req RenameCategoryRequest) (*Category, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	name := NormalizeCategoryName(req.Name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"Name": "is required"}}
	}

	category, err := s.ownedCategory(ctx, req.UserID, req.CategoryID)
	if err != nil {
		return nil, &CategoryError{CategoryID: req.CategoryID, Op: "rename", Err: err}
	}
	if category.Name == name {
		return category, nil
	}

	category.Name = name
	category.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateCategory(ctx, category); err != nil {
		return nil, &CategoryError{CategoryID: req.CategoryID, Op: "rename", Err: err}
	}

	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.ownedCategory(ctx, userID, id); err != nil {
		return &CategoryError{CategoryID: id, Op: "delete", Err: err}
	}

	// Referencing blogs survive with CategoryID cleared; the repository owns
	// that contract.
	if err := s.repository.DeleteCategory(ctx, id); err != nil {
		return &CategoryError{CategoryID: id, Op: "delete", Err: err}
	}

	return nil
}

func (s *service) ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error) {
	return s.repository.ListCategories(ctx, userID)
}

// Blog lifecycle operations

func (s *service) CreateBlog(ctx context.Context, req CreateBlogRequest) (*Blog, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	blog := &Blog{
		ID:        uuid.New(),
		AuthorID:  req.AuthorID,
		URL:       req.URL,
		Title:     req.Title,
		IsRead:    req.IsRead,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Category resolution and blog insertion are one transaction: a failed
	// insert must not leave behind a category that nothing references yet.
	err := s.repository.WithTx(ctx, func(repo Repository) error {
		category, err := resolveCategory(ctx, repo, req.AuthorID, req.CategoryName)
		if err != nil {
			return err
		}
		if category != nil {
			blog.CategoryID = &category.ID
			blog.Category = category
		}
		return repo.CreateBlog(ctx, blog)
	})
	if err != nil {
		return nil, &BlogError{BlogID: blog.ID, Op: "create", Err: err}
	}

	s.logger.Info("blog created", "blog_id", blog.ID, "author_id", blog.AuthorID)
	return blog, nil
}

func (s *service) GetBlog(ctx context.Context, userID, id uuid.UUID) (*Blog, error) {
	blog, err := s.ownedBlog(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, s.repository, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *service) ListBlogs(ctx context.Context, req ListBlogsRequest) ([]*Blog, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	blogs, err := s.repository.ListBlogs(ctx, req.UserID, req.Filters)
	if err != nil {
		return nil, err
	}

	for _, blog := range blogs {
		if err := s.attachRelations(ctx, s.repository, blog); err != nil {
			return nil, err
		}
	}

	return blogs, nil
}

func (s *service) UpdateBlogStatus(ctx context.Context, req UpdateBlogStatusRequest) error {
	if err := checkRequest(req); err != nil {
		return err
	}

	blog, err := s.ownedBlog(ctx, req.UserID, req.BlogID)
	if err != nil {
		return &BlogError{BlogID: req.BlogID, Op: "update_status", Err: err}
	}

	// Re-setting the current value is a successful no-op.
	if blog.IsRead == req.IsRead {
		return nil
	}

	blog.IsRead = req.IsRead
	blog.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateBlog(ctx, blog); err != nil {
		return &BlogError{BlogID: req.BlogID, Op: "update_status", Err: err}
	}

	return nil
}

func (s *service) DeleteBlog(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.ownedBlog(ctx, userID, id); err != nil {
		return &BlogError{BlogID: id, Op: "delete", Err: err}
	}

	// Association rows go with the blog; tag and category rows stay.
	if err := s.repository.DeleteBlog(ctx, id); err != nil {
		return &BlogError{BlogID: id, Op: "delete", Err: err}
	}

	s.logger.Info("blog deleted", "blog_id", id)
	return nil
}

// Tag operations

// resolveTag finds-or-creates the tag for rawName under userID, with the
// same duplicate-retry-as-lookup handling as categories.
func resolveTag(ctx context.Context, repo Repository, userID uuid.UUID, rawName string) (*Tag, error) {
	name := NormalizeTagName(rawName)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"Name": "is required"}}
	}

	tag, err := repo.GetTagByName(ctx, userID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return nil, err
	}

	tag = &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err = repo.CreateTag(ctx, tag)
	if err == nil {
		return tag, nil
	}
	if errors.Is(err, ErrDuplicateTag) {
		return repo.GetTagByName(ctx, userID, name)
	}
	return nil, err
}

func (s *service) AddTag(ctx context.Context, req AddTagRequest) (*Blog, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.ownedBlog(ctx, req.UserID, req.BlogID); err != nil {
		return nil, &BlogError{BlogID: req.BlogID, Op: "add_tag", Err: err}
	}

	tag, err := resolveTag(ctx, s.repository, req.UserID, req.Name)
	if err != nil {
		return nil, err
	}

	// Attaching an already-attached tag is set membership, not an error.
	if err := s.repository.AttachTag(ctx, req.BlogID, tag.ID); err != nil {
		return nil, &BlogError{BlogID: req.BlogID, Op: "add_tag", Err: err}
	}

	return s.loadBlog(ctx, s.repository, req.BlogID)
}

func (s *service) RemoveTag(ctx context.Context, userID, blogID, tagID uuid.UUID) (*Blog, error) {
	if _, err := s.ownedBlog(ctx, userID, blogID); err != nil {
		return nil, &BlogError{BlogID: blogID, Op: "remove_tag", Err: err}
	}
	if _, err := s.ownedTag(ctx, userID, tagID); err != nil {
		return nil, &TagError{TagID: tagID, Op: "remove_tag", Err: err}
	}

	// Detaching a tag that is not attached is a no-op.
	if err := s.repository.DetachTag(ctx, blogID, tagID); err != nil {
		return nil, &BlogError{BlogID: blogID, Op: "remove_tag", Err: err}
	}

	return s.loadBlog(ctx, s.repository, blogID)
}

func (s *service) DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error {
	if _, err := s.ownedTag(ctx, userID, tagID); err != nil {
		return &TagError{TagID: tagID, Op: "delete", Err: err}
	}

	count, err := s.repository.CountBlogsWithTag(ctx, tagID)
	if err != nil {
		return &TagError{TagID: tagID, Op: "delete", Err: err}
	}
	if count > 0 {
		return &TagError{TagID: tagID, Op: "delete", Err: ErrTagInUse}
	}

	if err := s.repository.DeleteTag(ctx, tagID); err != nil {
		return &TagError{TagID: tagID, Op: "delete", Err: err}
	}

	return nil
}

func (s *service) ListTags(ctx context.Context, userID uuid.UUID) ([]*Tag, error) {
	return s.repository.ListTags(ctx, userID)
}

// Ownership helpers. Entities belong exclusively to one user; addressing
// another user's entity answers with the same not-found sentinel as a
// nonexistent ID, so foreign IDs reveal nothing.

func (s *service) ownedBlog(ctx context.Context, userID, id uuid.UUID) (*Blog, error) {
	blog, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.AuthorID != userID {
		return nil, ErrBlogNotFound
	}
	return blog, nil
}

func (s *service) ownedCategory(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	category, err := s.repository.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *service) ownedTag(ctx context.Context, userID, id uuid.UUID) (*Tag, error) {
	tag, err := s.repository.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.UserID != userID {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// loadBlog returns the blog with its category and full tag set attached.
func (s *service) loadBlog(ctx context.Context, repo Repository, id uuid.UUID) (*Blog, error) {
	blog, err := repo.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, repo, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *service) attachRelations(ctx context.Context, repo Repository, blog *Blog) error {
	tags, err := repo.ListBlogTags(ctx, blog.ID)
	if err != nil {
		return &BlogError{BlogID: blog.ID, Op: "load_tags", Err: err}
	}
	blog.Tags = tags

	if blog.CategoryID != nil {
		category, err := repo.GetCategory(ctx, *blog.CategoryID)
		if err != nil {
			return &BlogError{BlogID: blog.ID, Op: "load_category", Err: err}
		}
		blog.Category = category
	}

	return nil
}
