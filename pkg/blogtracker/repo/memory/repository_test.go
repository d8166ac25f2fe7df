package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

func seedUser(t *testing.T, repo *Repository, email string) *blogtracker.User {
	t.Helper()

	user := &blogtracker.User{
		ID:       uuid.New(),
		Email:    email,
		Username: "user-" + email,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func seedBlog(t *testing.T, repo *Repository, authorID uuid.UUID) *blogtracker.Blog {
	t.Helper()

	blog := &blogtracker.Blog{
		ID:        uuid.New(),
		AuthorID:  authorID,
		URL:       "https://example.com/post",
		Title:     "Post",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateBlog(context.Background(), blog))
	return blog
}

func seedTag(t *testing.T, repo *Repository, userID uuid.UUID, name string) *blogtracker.Tag {
	t.Helper()

	tag := &blogtracker.Tag{ID: uuid.New(), UserID: userID, Name: name}
	require.NoError(t, repo.CreateTag(context.Background(), tag))
	return tag
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := New()
	seedUser(t, repo, "alice@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.CreateUser(ctx, &blogtracker.User{
			ID:       uuid.New(),
			Email:    "alice@example.com",
			Username: "someone-else",
		})
		assert.ErrorIs(t, err, blogtracker.ErrDuplicateUser)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.CreateUser(ctx, &blogtracker.User{
			ID:       uuid.New(),
			Email:    "other@example.com",
			Username: "user-alice@example.com",
		})
		assert.ErrorIs(t, err, blogtracker.ErrDuplicateUser)
	})
}

func TestCategoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")

	first := &blogtracker.Category{ID: uuid.New(), UserID: alice.ID, Name: "tech"}
	require.NoError(t, repo.CreateCategory(ctx, first))

	t.Run("same user same name conflicts", func(t *testing.T) {
		err := repo.CreateCategory(ctx, &blogtracker.Category{
			ID:     uuid.New(),
			UserID: alice.ID,
			Name:   "tech",
		})
		assert.ErrorIs(t, err, blogtracker.ErrDuplicateCategory)
	})

	t.Run("other user same name is fine", func(t *testing.T) {
		err := repo.CreateCategory(ctx, &blogtracker.Category{
			ID:     uuid.New(),
			UserID: bob.ID,
			Name:   "tech",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown owner", func(t *testing.T) {
		err := repo.CreateCategory(ctx, &blogtracker.Category{
			ID:     uuid.New(),
			UserID: uuid.New(),
			Name:   "tech",
		})
		assert.ErrorIs(t, err, blogtracker.ErrUserNotFound)
	})

	t.Run("lookup by name", func(t *testing.T) {
		got, err := repo.GetCategoryByName(ctx, alice.ID, "tech")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		_, err = repo.GetCategoryByName(ctx, alice.ID, "missing")
		assert.ErrorIs(t, err, blogtracker.ErrCategoryNotFound)
	})
}

func TestDeleteCategoryClearsReferences(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")

	category := &blogtracker.Category{ID: uuid.New(), UserID: alice.ID, Name: "tech"}
	require.NoError(t, repo.CreateCategory(ctx, category))

	blog := &blogtracker.Blog{
		ID:         uuid.New(),
		AuthorID:   alice.ID,
		URL:        "https://example.com/post",
		Title:      "Post",
		CategoryID: &category.ID,
	}
	require.NoError(t, repo.CreateBlog(ctx, blog))

	require.NoError(t, repo.DeleteCategory(ctx, category.ID))

	got, err := repo.GetBlog(ctx, blog.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	// The freed name is reusable.
	err = repo.CreateCategory(ctx, &blogtracker.Category{
		ID:     uuid.New(),
		UserID: alice.ID,
		Name:   "tech",
	})
	assert.NoError(t, err)
}

func TestAttachDetach(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")
	blog := seedBlog(t, repo, alice.ID)
	tag := seedTag(t, repo, alice.ID, "golang")

	t.Run("attach then list", func(t *testing.T) {
		require.NoError(t, repo.AttachTag(ctx, blog.ID, tag.ID))

		tags, err := repo.ListBlogTags(ctx, blog.ID)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, tag.ID, tags[0].ID)
	})

	t.Run("attach twice keeps one row", func(t *testing.T) {
		require.NoError(t, repo.AttachTag(ctx, blog.ID, tag.ID))

		tags, err := repo.ListBlogTags(ctx, blog.ID)
		require.NoError(t, err)
		assert.Len(t, tags, 1)

		count, err := repo.CountBlogsWithTag(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("attach to unknown blog", func(t *testing.T) {
		err := repo.AttachTag(ctx, uuid.New(), tag.ID)
		assert.ErrorIs(t, err, blogtracker.ErrBlogNotFound)
	})

	t.Run("attach unknown tag", func(t *testing.T) {
		err := repo.AttachTag(ctx, blog.ID, uuid.New())
		assert.ErrorIs(t, err, blogtracker.ErrTagNotFound)
	})

	t.Run("detach is idempotent", func(t *testing.T) {
		require.NoError(t, repo.DetachTag(ctx, blog.ID, tag.ID))
		require.NoError(t, repo.DetachTag(ctx, blog.ID, tag.ID))

		tags, err := repo.ListBlogTags(ctx, blog.ID)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestAttachOrderPreserved(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")
	blog := seedBlog(t, repo, alice.ID)

	names := []string{"zebra", "apple", "middle"}
	for _, name := range names {
		tag := seedTag(t, repo, alice.ID, name)
		require.NoError(t, repo.AttachTag(ctx, blog.ID, tag.ID))
	}

	tags, err := repo.ListBlogTags(ctx, blog.ID)
	require.NoError(t, err)
	require.Len(t, tags, len(names))
	for i, name := range names {
		assert.Equal(t, name, tags[i].Name)
	}
}

func TestDeleteTagRefusedWhileAttached(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")
	blog := seedBlog(t, repo, alice.ID)
	tag := seedTag(t, repo, alice.ID, "golang")
	require.NoError(t, repo.AttachTag(ctx, blog.ID, tag.ID))

	err := repo.DeleteTag(ctx, tag.ID)
	require.ErrorIs(t, err, blogtracker.ErrTagInUse)

	// Nothing was deleted or detached by the refused call.
	tags, err := repo.ListBlogTags(ctx, blog.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
	_, err = repo.GetTag(ctx, tag.ID)
	assert.NoError(t, err)

	// Once detached, the delete goes through.
	require.NoError(t, repo.DetachTag(ctx, blog.ID, tag.ID))
	require.NoError(t, repo.DeleteTag(ctx, tag.ID))
	_, err = repo.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, blogtracker.ErrTagNotFound)
}

func TestDeleteBlogDropsAssociations(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")
	blog := seedBlog(t, repo, alice.ID)
	tag := seedTag(t, repo, alice.ID, "golang")
	require.NoError(t, repo.AttachTag(ctx, blog.ID, tag.ID))

	require.NoError(t, repo.DeleteBlog(ctx, blog.ID))

	count, err := repo.CountBlogsWithTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// The tag row itself is untouched.
	_, err = repo.GetTag(ctx, tag.ID)
	assert.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx blogtracker.Repository) error {
		if err := tx.CreateCategory(ctx, &blogtracker.Category{
			ID:     uuid.New(),
			UserID: alice.ID,
			Name:   "tech",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The category created inside the failed transaction is gone.
	_, err = repo.GetCategoryByName(ctx, alice.ID, "tech")
	assert.ErrorIs(t, err, blogtracker.ErrCategoryNotFound)

	categories, err := repo.ListCategories(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")

	err := repo.WithTx(ctx, func(tx blogtracker.Repository) error {
		return tx.CreateCategory(ctx, &blogtracker.Category{
			ID:     uuid.New(),
			UserID: alice.ID,
			Name:   "tech",
		})
	})
	require.NoError(t, err)

	got, err := repo.GetCategoryByName(ctx, alice.ID, "tech")
	require.NoError(t, err)
	assert.Equal(t, "tech", got.Name)
}

func TestCopySemantics(t *testing.T) {
	ctx := context.Background()
	repo := New()
	alice := seedUser(t, repo, "alice@example.com")
	blog := seedBlog(t, repo, alice.ID)

	got, err := repo.GetBlog(ctx, blog.ID)
	require.NoError(t, err)

	// Mutating a returned row must not leak into the store.
	got.Title = "mutated"

	again, err := repo.GetBlog(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Post", again.Title)
}
