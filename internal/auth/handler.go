package auth

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware *Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, middleware *Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{logger: logger, service: service, middleware: middleware}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.With(h.middleware.RequireUser).Get("/me", h.handleMe)
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Success   bool       `json:"success"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      PublicUser `json:"user"`
}

type userResponse struct {
	Success bool       `json:"success"`
	User    PublicUser `json:"user"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	session, err := h.service.Signup(r.Context(), SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(r),
	})
	if err != nil {
		h.fail(w, r, "signup", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newSessionResponse(session))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	session, err := h.service.Login(r.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(r),
	})
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newSessionResponse(session))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, msgNoToken)
		return
	}
	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "me", err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{Success: true, User: *user})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if status := httpx.StatusFor(err); status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.String("path", r.URL.Path), slog.Int("status", status), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func newSessionResponse(s *Session) sessionResponse {
	return sessionResponse{Success: true, Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User}
}

func clientInfo(r *http.Request) ClientInfo {
	return ClientInfo{RemoteAddr: r.RemoteAddr, UserAgent: r.UserAgent()}
}
