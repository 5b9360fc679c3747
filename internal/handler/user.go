package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/shelf/internal/service"
)

// UserHandler exposes the User Directory.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleSync creates or refreshes the caller's directory record.
//
// HTTP: POST /api/users/sync
// REQUEST BODY: {"name": "...", "email": "...", "avatarUrl": "..."}
// RESPONSE: 200 {"id": "..."}
//
// Clients call this right after login (with the profile from /auth/session)
// and again whenever a write answers "user_not_synced".
func (h *UserHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req syncUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.users.Upsert(r.Context(), req.Name, req.Email, req.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// HandleMe returns the caller's directory record, or null when the caller
// is anonymous or not synced yet.
//
// HTTP: GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
