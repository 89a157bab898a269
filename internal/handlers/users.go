package handlers

import (
	"log/slog"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Users groups the endpoints acting on the signed-in user.
type Users struct {
	users    *store.UserStore
	posts    *store.PostStore
	sessions *session.Store
	appURL   string
}

// NewUsers creates the user handler group. sessions may be nil, in which
// case profile edits do not refresh the session.
func NewUsers(users *store.UserStore, posts *store.PostStore, sessions *session.Store, appURL string) *Users {
	return &Users{users: users, posts: posts, sessions: sessions, appURL: appURL}
}

// Profile returns the caller's full profile.
func (h *Users) Profile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	u, err := h.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		serverError(w, r, "find profile", err)
		return
	}
	if u == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	u.Image = models.ImageURL(u.Image, h.appURL)
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// UpdateProfile edits the caller's name, username, bio and image.
func (h *Users) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req profileRequest
	if !bindJSON(w, r, &req) {
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), sess.UserID, models.ProfileUpdate{
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
		Image:    req.Image,
	})
	if err != nil {
		storeError(w, r, "update profile", err)
		return
	}
	if u == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	if h.sessions != nil {
		updated := *sess
		updated.Name = u.Name
		updated.Username = u.Username
		updated.Image = u.Image
		if err := h.sessions.Update(r.Context(), r, &updated); err != nil {
			slog.Warn("session refresh after profile update failed", "error", err, "user", u.ID)
		}
	}

	u.Image = models.ImageURL(u.Image, h.appURL)
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// Posts lists every post the caller wrote, drafts included.
func (h *Users) Posts(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	posts, err := h.posts.ListByAuthor(r.Context(), sess.UserID)
	if err != nil {
		serverError(w, r, "list user posts", err)
		return
	}
	for i := range posts {
		presentPost(&posts[i], h.appURL)
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}
