package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// TagHandler handles HTTP requests for tags. Tags are created implicitly by
// attaching them to blogs; this handler only lists and deletes.
type TagHandler struct {
	service blogtracker.Service
}

// NewTagHandler creates a new tag handler
func NewTagHandler(service blogtracker.Service) *TagHandler {
	return &TagHandler{service: service}
}

// Routes returns the routes for tags
func (h *TagHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListTags)
	r.Delete("/{id}", h.DeleteTag)

	return r
}

// ListTags lists the authenticated user's tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	tags, err := h.service.ListTags(r.Context(), userID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, tags)
}

// DeleteTag deletes a tag globally. Fails with 409 while any blog still
// references it; detach first.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, err := CurrentUserID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTag(r.Context(), userID, id); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
