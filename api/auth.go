/*
auth.go - Registration, login, and bearer-token middleware

PURPOSE:
  First-party session auth for the worklog API. Registration enforces
  the credential shape rules from the worklog package, passwords are
  stored as bcrypt hashes, and sessions are opaque random tokens.

CONTRACT WITH CLIENTS:
  A 401 from any authenticated endpoint means the session is invalid;
  clients drop their cached token and return to login.

SEE ALSO:
  - worklog/validate.go: ValidateUsername, ValidatePassword
  - store/sqlite:        users and tokens tables
*/
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worklog"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO is the account representation returned to clients.
type UserDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// AuthResponse carries a fresh session token and its account.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// Register creates an account and opens a session.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := worklog.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := worklog.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx := r.Context()
	if existing, err := h.Store.GetUserByUsername(ctx, req.Username); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check username", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "Username already taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	user := sqlite.User{
		ID:           sqlite.NewID("user"),
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
	}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	h.openSession(w, r, user, http.StatusCreated)
}

// Login verifies credentials and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	h.openSession(w, r, *user, http.StatusOK)
}

// Logout invalidates the presented session token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.Store.DeleteToken(r.Context(), token); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to end session", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request, user sqlite.User, status int) {
	token, err := newSessionToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session", err)
		return
	}
	if err := h.Store.SaveToken(r.Context(), token, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	writeJSON(w, status, AuthResponse{
		Token: token,
		User: UserDTO{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		},
	})
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// RequireAuth resolves the bearer token and injects the user id into
// the request context. Missing or unknown tokens get a 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}
		userID, err := h.Store.UserForToken(r.Context(), token, h.tokenTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve session", err)
			return
		}
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Invalid or expired session", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, userID)))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// requestUserID returns the authenticated user id injected by RequireAuth.
func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(ctxUserID).(string)
	return id
}
