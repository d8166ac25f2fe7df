package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// Repository implements blogtracker.Repository using in-memory storage. It
// is intended for tests and development; uniqueness invariants are enforced
// under the same lock that guards the maps, so concurrent find-or-create
// races resolve exactly as they would against a unique index.
type Repository struct {
	mu sync.RWMutex

	users           map[uuid.UUID]*blogtracker.User
	usersByEmail    map[string]uuid.UUID
	usersByUsername map[string]uuid.UUID

	blogs      map[uuid.UUID]*blogtracker.Blog
	categories map[uuid.UUID]*blogtracker.Category
	tags       map[uuid.UUID]*blogtracker.Tag

	categoriesByName map[nameKey]uuid.UUID
	tagsByName       map[nameKey]uuid.UUID

	// blog_id -> tag IDs in attach order
	blogTags map[uuid.UUID][]uuid.UUID

	// txMu serializes WithTx so snapshot/restore rollback is coherent.
	txMu sync.Mutex
}

type nameKey struct {
	userID uuid.UUID
	name   string
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		users:            make(map[uuid.UUID]*blogtracker.User),
		usersByEmail:     make(map[string]uuid.UUID),
		usersByUsername:  make(map[string]uuid.UUID),
		blogs:            make(map[uuid.UUID]*blogtracker.Blog),
		categories:       make(map[uuid.UUID]*blogtracker.Category),
		tags:             make(map[uuid.UUID]*blogtracker.Tag),
		categoriesByName: make(map[nameKey]uuid.UUID),
		tagsByName:       make(map[nameKey]uuid.UUID),
		blogTags:         make(map[uuid.UUID][]uuid.UUID),
	}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *blogtracker.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usersByEmail[user.Email]; taken {
		return blogtracker.ErrDuplicateUser
	}
	if _, taken := r.usersByUsername[user.Username]; taken {
		return blogtracker.ErrDuplicateUser
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[user.Email] = user.ID
	r.usersByUsername[user.Username] = user.ID

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*blogtracker.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, blogtracker.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*blogtracker.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[email]
	if !exists {
		return nil, blogtracker.ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

// Blog operations

func (r *Repository) CreateBlog(ctx context.Context, blog *blogtracker.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[blog.AuthorID]; !exists {
		return blogtracker.ErrUserNotFound
	}
	if blog.CategoryID != nil {
		if _, exists := r.categories[*blog.CategoryID]; !exists {
			return blogtracker.ErrCategoryNotFound
		}
	}

	r.blogs[blog.ID] = copyBlog(blog)

	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*blogtracker.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blog, exists := r.blogs[id]
	if !exists {
		return nil, blogtracker.ErrBlogNotFound
	}
	return copyBlog(blog), nil
}

func (r *Repository) ListBlogs(ctx context.Context, userID uuid.UUID, filters blogtracker.BlogListFilters) ([]*blogtracker.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*blogtracker.Blog{}
	for _, blog := range r.blogs {
		if blog.AuthorID != userID {
			continue
		}
		if filters.CategoryID != nil && (blog.CategoryID == nil || *blog.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.IsRead != nil && blog.IsRead != *filters.IsRead {
			continue
		}
		if filters.TagID != nil && !slices.Contains(r.blogTags[blog.ID], *filters.TagID) {
			continue
		}
		result = append(result, copyBlog(blog))
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *blogtracker.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[blog.ID]; !exists {
		return blogtracker.ErrBlogNotFound
	}

	r.blogs[blog.ID] = copyBlog(blog)

	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[id]; !exists {
		return blogtracker.ErrBlogNotFound
	}

	delete(r.blogs, id)
	// Association rows go with the blog; tags themselves stay.
	delete(r.blogTags, id)

	return nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *blogtracker.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[category.UserID]; !exists {
		return blogtracker.ErrUserNotFound
	}

	key := nameKey{userID: category.UserID, name: category.Name}
	if _, taken := r.categoriesByName[key]; taken {
		return blogtracker.ErrDuplicateCategory
	}

	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	r.categoriesByName[key] = category.ID

	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*blogtracker.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[id]
	if !exists {
		return nil, blogtracker.ErrCategoryNotFound
	}
	categoryCopy := *category
	return &categoryCopy, nil
}

func (r *Repository) GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*blogtracker.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.categoriesByName[nameKey{userID: userID, name: name}]
	if !exists {
		return nil, blogtracker.ErrCategoryNotFound
	}
	categoryCopy := *r.categories[id]
	return &categoryCopy, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, category *blogtracker.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.categories[category.ID]
	if !exists {
		return blogtracker.ErrCategoryNotFound
	}

	newKey := nameKey{userID: category.UserID, name: category.Name}
	if existingID, taken := r.categoriesByName[newKey]; taken && existingID != category.ID {
		return blogtracker.ErrDuplicateCategory
	}

	delete(r.categoriesByName, nameKey{userID: current.UserID, name: current.Name})
	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	r.categoriesByName[newKey] = category.ID

	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, exists := r.categories[id]
	if !exists {
		return blogtracker.ErrCategoryNotFound
	}

	// SET NULL semantics: referencing blogs survive uncategorized.
	for _, blog := range r.blogs {
		if blog.CategoryID != nil && *blog.CategoryID == id {
			blog.CategoryID = nil
		}
	}

	delete(r.categoriesByName, nameKey{userID: category.UserID, name: category.Name})
	delete(r.categories, id)

	return nil
}

func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*blogtracker.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*blogtracker.Category{}
	for _, category := range r.categories {
		if category.UserID == userID {
			categoryCopy := *category
			result = append(result, &categoryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Tag operations

func (r *Repository) CreateTag(ctx context.Context, tag *blogtracker.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[tag.UserID]; !exists {
		return blogtracker.ErrUserNotFound
	}

	key := nameKey{userID: tag.UserID, name: tag.Name}
	if _, taken := r.tagsByName[key]; taken {
		return blogtracker.ErrDuplicateTag
	}

	tagCopy := *tag
	r.tags[tag.ID] = &tagCopy
	r.tagsByName[key] = tag.ID

	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*blogtracker.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, exists := r.tags[id]
	if !exists {
		return nil, blogtracker.ErrTagNotFound
	}
	tagCopy := *tag
	return &tagCopy, nil
}

func (r *Repository) GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*blogtracker.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.tagsByName[nameKey{userID: userID, name: name}]
	if !exists {
		return nil, blogtracker.ErrTagNotFound
	}
	tagCopy := *r.tags[id]
	return &tagCopy, nil
}

func (r *Repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, exists := r.tags[id]
	if !exists {
		return blogtracker.ErrTagNotFound
	}

	// Refuse while any association still references the tag, as the SQL
	// stores' foreign key does. Deleting never detaches.
	for _, tagIDs := range r.blogTags {
		if slices.Contains(tagIDs, id) {
			return blogtracker.ErrTagInUse
		}
	}

	delete(r.tagsByName, nameKey{userID: tag.UserID, name: tag.Name})
	delete(r.tags, id)

	return nil
}

func (r *Repository) ListTags(ctx context.Context, userID uuid.UUID) ([]*blogtracker.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*blogtracker.Tag{}
	for _, tag := range r.tags {
		if tag.UserID == userID {
			tagCopy := *tag
			result = append(result, &tagCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Blog-tag association operations

func (r *Repository) AttachTag(ctx context.Context, blogID, tagID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[blogID]; !exists {
		return blogtracker.ErrBlogNotFound
	}
	if _, exists := r.tags[tagID]; !exists {
		return blogtracker.ErrTagNotFound
	}

	if slices.Contains(r.blogTags[blogID], tagID) {
		return nil
	}
	r.blogTags[blogID] = append(r.blogTags[blogID], tagID)

	return nil
}

func (r *Repository) DetachTag(ctx context.Context, blogID, tagID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[blogID]; !exists {
		return blogtracker.ErrBlogNotFound
	}

	tagIDs := r.blogTags[blogID]
	if i := slices.Index(tagIDs, tagID); i >= 0 {
		r.blogTags[blogID] = slices.Delete(tagIDs, i, i+1)
	}

	return nil
}

func (r *Repository) ListBlogTags(ctx context.Context, blogID uuid.UUID) ([]*blogtracker.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.blogs[blogID]; !exists {
		return nil, blogtracker.ErrBlogNotFound
	}

	result := []*blogtracker.Tag{}
	for _, tagID := range r.blogTags[blogID] {
		if tag, exists := r.tags[tagID]; exists {
			tagCopy := *tag
			result = append(result, &tagCopy)
		}
	}

	return result, nil
}

func (r *Repository) CountBlogsWithTag(ctx context.Context, tagID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, tagIDs := range r.blogTags {
		if slices.Contains(tagIDs, tagID) {
			count++
		}
	}

	return count, nil
}

// WithTx runs fn with all-or-nothing semantics by snapshotting the maps and
// restoring them if fn fails. Transactions are serialized; good enough for a
// test/dev store, and observably equivalent to the SQL repositories.
func (r *Repository) WithTx(ctx context.Context, fn func(blogtracker.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users            map[uuid.UUID]*blogtracker.User
	usersByEmail     map[string]uuid.UUID
	usersByUsername  map[string]uuid.UUID
	blogs            map[uuid.UUID]*blogtracker.Blog
	categories       map[uuid.UUID]*blogtracker.Category
	tags             map[uuid.UUID]*blogtracker.Tag
	categoriesByName map[nameKey]uuid.UUID
	tagsByName       map[nameKey]uuid.UUID
	blogTags         map[uuid.UUID][]uuid.UUID
}

func (r *Repository) snapshot() snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := snapshot{
		users:            make(map[uuid.UUID]*blogtracker.User, len(r.users)),
		usersByEmail:     make(map[string]uuid.UUID, len(r.usersByEmail)),
		usersByUsername:  make(map[string]uuid.UUID, len(r.usersByUsername)),
		blogs:            make(map[uuid.UUID]*blogtracker.Blog, len(r.blogs)),
		categories:       make(map[uuid.UUID]*blogtracker.Category, len(r.categories)),
		tags:             make(map[uuid.UUID]*blogtracker.Tag, len(r.tags)),
		categoriesByName: make(map[nameKey]uuid.UUID, len(r.categoriesByName)),
		tagsByName:       make(map[nameKey]uuid.UUID, len(r.tagsByName)),
		blogTags:         make(map[uuid.UUID][]uuid.UUID, len(r.blogTags)),
	}
	for id, u := range r.users {
		uCopy := *u
		snap.users[id] = &uCopy
	}
	for email, id := range r.usersByEmail {
		snap.usersByEmail[email] = id
	}
	for username, id := range r.usersByUsername {
		snap.usersByUsername[username] = id
	}
	for id, b := range r.blogs {
		snap.blogs[id] = copyBlog(b)
	}
	for id, c := range r.categories {
		cCopy := *c
		snap.categories[id] = &cCopy
	}
	for id, t := range r.tags {
		tCopy := *t
		snap.tags[id] = &tCopy
	}
	for key, id := range r.categoriesByName {
		snap.categoriesByName[key] = id
	}
	for key, id := range r.tagsByName {
		snap.tagsByName[key] = id
	}
	for blogID, tagIDs := range r.blogTags {
		snap.blogTags[blogID] = slices.Clone(tagIDs)
	}
	return snap
}

func (r *Repository) restore(snap snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = snap.users
	r.usersByEmail = snap.usersByEmail
	r.usersByUsername = snap.usersByUsername
	r.blogs = snap.blogs
	r.categories = snap.categories
	r.tags = snap.tags
	r.categoriesByName = snap.categoriesByName
	r.tagsByName = snap.tagsByName
	r.blogTags = snap.blogTags
}

// copyBlog clones a blog row including its nullable category reference. The
// Tags and Category relation fields are not stored here; the service layer
// populates them.
func copyBlog(blog *blogtracker.Blog) *blogtracker.Blog {
	blogCopy := *blog
	blogCopy.Tags = nil
	blogCopy.Category = nil
	if blog.CategoryID != nil {
		categoryID := *blog.CategoryID
		blogCopy.CategoryID = &categoryID
	}
	return &blogCopy
}
