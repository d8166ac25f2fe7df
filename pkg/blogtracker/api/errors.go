package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// ErrorResponse is the JSON body for any failed request
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// renderError maps core errors onto HTTP status codes: validation 400,
// missing entities 404, uniqueness/precondition conflicts 409, bad
// credentials 401, everything else an opaque 500.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *blogtracker.ValidationError
	if errors.As(err, &verr) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "validation failed", Fields: verr.Fields})
		return
	}

	switch {
	case blogtracker.IsNotFound(err):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: notFoundMessage(err)})
	case blogtracker.IsConflict(err):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ErrorResponse{Error: conflictMessage(err)})
	case errors.Is(err, blogtracker.ErrInvalidCredentials):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: blogtracker.ErrInvalidCredentials.Error()})
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "internal server error"})
	}
}

func notFoundMessage(err error) string {
	for _, sentinel := range []error{
		blogtracker.ErrBlogNotFound,
		blogtracker.ErrCategoryNotFound,
		blogtracker.ErrTagNotFound,
		blogtracker.ErrUserNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "not found"
}

func conflictMessage(err error) string {
	for _, sentinel := range []error{
		blogtracker.ErrTagInUse,
		blogtracker.ErrDuplicateCategory,
		blogtracker.ErrDuplicateTag,
		blogtracker.ErrDuplicateUser,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "conflict"
}
