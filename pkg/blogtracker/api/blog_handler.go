package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// BlogHandler handles HTTP requests for blogs, including tag attachment
type BlogHandler struct {
	service blogtracker.Service
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(service blogtracker.Service) *BlogHandler {
	return &BlogHandler{service: service}
}

// Routes returns the routes for blogs
func (h *BlogHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateBlog)
	r.Get("/", h.ListBlogs)
	r.Get("/{id}", h.GetBlog)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.DeleteBlog)

	r.Post("/{id}/tags", h.AddTag)
	r.Delete("/{id}/tags/{tagID}", h.RemoveTag)

	return r
}

// CreateBlogRequest is the request body for saving a link
type CreateBlogRequest struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	IsRead       bool   `json:"is_read"`
	CategoryName string `json:"category_name"`
}

// UpdateStatusRequest is the request body for flipping the read flag. The
// pointer distinguishes a missing field from an explicit false.
type UpdateStatusRequest struct {
	IsRead *bool `json:"is_read"`
}

// AddTagRequest is the request body for attaching a tag
type AddTagRequest struct {
	Name string `json:"name"`
}

// CreateBlog saves a link for the authenticated user
func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req CreateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	blog, err := h.service.CreateBlog(r.Context(), blogtracker.CreateBlogRequest{
		AuthorID:     userID,
		URL:          req.URL,
		Title:        req.Title,
		IsRead:       req.IsRead,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, blog)
}

// ListBlogs lists the authenticated user's blogs, optionally filtered by
// category, tag or read status
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var filters blogtracker.BlogListFilters
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "invalid category_id"})
			return
		}
		filters.CategoryID = &id
	}
	if v := r.URL.Query().Get("tag_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "invalid tag_id"})
			return
		}
		filters.TagID = &id
	}
	if v := r.URL.Query().Get("is_read"); v != "" {
		isRead := v == "true"
		filters.IsRead = &isRead
	}

	blogs, err := h.service.ListBlogs(r.Context(), blogtracker.ListBlogsRequest{
		UserID:  userID,
		Filters: filters,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, blogs)
}

// GetBlog returns one blog with its category and tags
func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	blog, err := h.service.GetBlog(r.Context(), userID, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, blog)
}

// UpdateStatus sets the read flag
func (h *BlogHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsRead == nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "is_read must be a boolean"})
		return
	}

	err = h.service.UpdateBlogStatus(r.Context(), blogtracker.UpdateBlogStatusRequest{
		BlogID: id,
		UserID: userID,
		IsRead: *req.IsRead,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// DeleteBlog deletes a blog and its tag associations
func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBlog(r.Context(), userID, id); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// AddTag attaches a tag (created on first use) and returns the blog with
// its full tag set
func (h *BlogHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	blog, err := h.service.AddTag(r.Context(), blogtracker.AddTagRequest{
		BlogID: id,
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, blog)
}

// RemoveTag detaches a tag and returns the blog with its remaining tags
func (h *BlogHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := parseIDParam(w, r, "tagID")
	if !ok {
		return
	}

	blog, err := h.service.RemoveTag(r.Context(), userID, id, tagID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, blog)
}

// parseIDParam parses a UUID route parameter, rendering a 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
