package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
)

// AuthHandler handles signup and signin. Token issuance is thin glue: the
// core only knows RegisterUser and AuthenticateUser.
type AuthHandler struct {
	service   blogtracker.Service
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service blogtracker.Service, tokenAuth *jwtauth.JWTAuth) *AuthHandler {
	return &AuthHandler{
		service:   service,
		tokenAuth: tokenAuth,
		tokenTTL:  24 * time.Hour,
	}
}

// Routes returns the public auth routes
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/signin", h.Signin)

	return r
}

// SignupRequest is the request body for creating an account
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SigninRequest is the request body for signing in
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the response body carrying a bearer token
type TokenResponse struct {
	Token string            `json:"token"`
	User  *blogtracker.User `json:"user"`
}

// Signup creates a user account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.service.RegisterUser(r.Context(), blogtracker.RegisterUserRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, TokenResponse{Token: token, User: user})
}

// Signin exchanges email/password for a bearer token
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), blogtracker.AuthenticateUserRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, TokenResponse{Token: token, User: user})
}

func (h *AuthHandler) issueToken(user *blogtracker.User) (string, error) {
	now := time.Now().UTC()
	_, token, err := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": user.ID.String(),
		"iat":     now.Unix(),
		"exp":     now.Add(h.tokenTTL).Unix(),
	})
	return token, err
}
