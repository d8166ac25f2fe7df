package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	service blogtracker.Service
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service blogtracker.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// Routes returns the routes for categories
func (h *CategoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateCategory)
	r.Get("/", h.ListCategories)
	r.Patch("/{id}", h.RenameCategory)
	r.Delete("/{id}", h.DeleteCategory)

	return r
}

// CategoryRequest is the request body for creating or renaming a category
type CategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory creates a category explicitly. The name is normalized the
// same way blog creation resolves it.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	category, err := h.service.CreateCategory(r.Context(), blogtracker.CreateCategoryRequest{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

// ListCategories lists the authenticated user's categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	categories, err := h.service.ListCategories(r.Context(), userID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, categories)
}

// RenameCategory renames a category
func (h *CategoryHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	category, err := h.service.RenameCategory(r.Context(), blogtracker.RenameCategoryRequest{
		CategoryID: id,
		UserID:     userID,
		Name:       req.Name,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, category)
}

// DeleteCategory deletes a category; referencing blogs survive with their
// category cleared
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), userID, id); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
