package blogtracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrBlogNotFound indicates a blog was not found
	ErrBlogNotFound = errors.New("blog not found")

	// ErrCategoryNotFound indicates a category was not found
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTagNotFound indicates a tag was not found
	ErrTagNotFound = errors.New("tag not found")

	// ErrDuplicateUser indicates the email or username is already taken
	ErrDuplicateUser = errors.New("email or username already registered")

	// ErrDuplicateCategory indicates the user already has a category with
	// that normalized name
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrDuplicateTag indicates the user already has a tag with that name
	ErrDuplicateTag = errors.New("tag already exists")

	// ErrTagInUse indicates a tag cannot be deleted while blogs reference it
	ErrTagInUse = errors.New("tag still in use")

	// ErrInvalidCredentials indicates a failed email/password check
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports malformed input, keyed by field name. It is
// produced by the validation stage before any store round-trip.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BlogError represents an error from a blog operation
type BlogError struct {
	BlogID uuid.UUID
	Op     string
	Err    error
}

func (e *BlogError) Error() string {
	return fmt.Sprintf("blog operation %s failed for blog %s: %v", e.Op, e.BlogID, e.Err)
}

func (e *BlogError) Unwrap() error {
	return e.Err
}

// CategoryError represents an error from a category operation
type CategoryError struct {
	CategoryID uuid.UUID
	Op         string
	Err        error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("category operation %s failed for category %s: %v", e.Op, e.CategoryID, e.Err)
}

func (e *CategoryError) Unwrap() error {
	return e.Err
}

// TagError represents an error from a tag operation
type TagError struct {
	TagID uuid.UUID
	Op    string
	Err   error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag operation %s failed for tag %s: %v", e.Op, e.TagID, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence-layer failure that is neither a not-found
// nor a uniqueness conflict. The core never retries these.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBlogNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrTagNotFound)
}

// IsConflict reports whether err is a uniqueness or precondition conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateUser) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrDuplicateTag) ||
		errors.Is(err, ErrTagInUse)
}
