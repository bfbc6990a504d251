package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aurelia-gems/storefront/internal/admin/domain"
	"github.com/aurelia-gems/storefront/pkg/auth"
	"github.com/aurelia-gems/storefront/pkg/logger"
)

// AdminHandler exposes the admin session over HTTP: sign in, sign out
// and session introspection.
type AdminHandler struct {
	machine *domain.Machine
	tokens  *auth.TokenManager
}

func NewAdminHandler(machine *domain.Machine, tokens *auth.TokenManager) *AdminHandler {
	return &AdminHandler{machine: machine, tokens: tokens}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admin/login", h.Login).Methods("POST")
	router.HandleFunc("/admin/logout", h.Logout).Methods("POST")
	router.HandleFunc("/admin/session", h.GetSession).Methods("GET")
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := h.machine.Login(r.Context(), req.Email, req.Password); err != nil {
		var locked *domain.LockedError
		if errors.As(err, &locked) {
			respondJSON(w, http.StatusTooManyRequests, Response{
				Success: false,
				Error:   locked.Error(),
			})
			return
		}

		// Deliberately generic; never reveals which part was wrong.
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	token, err := h.tokens.Generate(req.Email, "admin")
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to issue admin token")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to issue token",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Signed in",
		Data:    map[string]string{"token": token},
	})
}

// Logout handles POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.bearerClaims(r); err != nil {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Invalid token",
		})
		return
	}

	h.machine.Logout(r.Context())

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Signed out",
	})
}

// GetSession handles GET /admin/session
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	state := h.machine.State()
	session := h.machine.Snapshot()

	data := map[string]interface{}{
		"state": state,
	}
	if state == domain.StateAuthenticated {
		data["session_started_at"] = session.SessionStartedAt
		data["last_activity_at"] = session.LastActivityAt
	}
	if state == domain.StateLocked {
		data["locked_until"] = session.LockedUntil
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func (h *AdminHandler) bearerClaims(r *http.Request) (*auth.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization header")
	}
	return h.tokens.Validate(parts[1])
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
