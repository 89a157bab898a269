// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/notify"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// usernameAttempts bounds the search for a free generated username.
const usernameAttempts = 5

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	resets    *session.ResetTokens
	userStore *store.UserStore
	notifier  *notify.Notifier
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, resets *session.ResetTokens, userStore *store.UserStore, notifier *notify.Notifier) *Auth {
	return &Auth{
		sessions:  sessions,
		resets:    resets,
		userStore: userStore,
		notifier:  notifier,
	}
}

// Register creates an account. The username is the email's local part
// plus a random number below 1000.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !bindJSON(w, r, &req) {
		return
	}

	username, err := a.freeUsername(r, req.Email)
	if err != nil {
		serverError(w, r, "generate username", err)
		return
	}

	user, err := a.userStore.Create(r.Context(), models.NewUser{
		Name:     req.Name,
		Username: username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		storeError(w, r, "register user", err)
		return
	}

	slog.Info("user registered", "user", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

// freeUsername picks a generated username nobody owns yet. If every
// attempt collides the last candidate is returned and Create reports the
// conflict.
func (a *Auth) freeUsername(r *http.Request, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	var candidate string
	for range usernameAttempts {
		candidate = local + strconv.Itoa(rand.IntN(1000))
		u, err := a.userStore.FindByUsername(r.Context(), candidate)
		if err != nil {
			return "", err
		}
		if u == nil {
			break
		}
	}
	return candidate, nil
}

// Login checks credentials and starts a session. Any previous session on
// the request is destroyed first.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bindJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		serverError(w, r, "login lookup", err)
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("destroy previous session failed", "error", err)
	}
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Username: user.Username,
		Image:    user.Image,
		Role:     string(user.Role),
	})
	if err != nil {
		serverError(w, r, "session create", err)
		return
	}

	slog.Info("user logged in", "user", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout destroys the session and clears the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		serverError(w, r, "session destroy", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

// Session reports the current user, or null, along with the CSRF token
// the client must echo on unsafe requests.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      middleware.SessionFromCtx(r.Context()),
		"csrfToken": middleware.CSRFTokenFromCtx(r.Context()),
	})
}

// forgotPasswordMessage is returned whether or not the account exists.
const forgotPasswordMessage = "If an account exists with that email, we've sent password reset instructions."

// ForgotPassword issues a reset token and mails the link when the email
// belongs to an account. The response never reveals which.
func (a *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !bindJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.FindByEmail(r.Context(), req.Email)
	if err != nil {
		serverError(w, r, "forgot password lookup", err)
		return
	}

	if user != nil {
		token, err := a.resets.Issue(r.Context(), user.ID)
		if err != nil {
			serverError(w, r, "issue reset token", err)
			return
		}
		if a.notifier != nil {
			if err := a.notifier.SendPasswordReset(r.Context(), user, token, session.ResetTokenTTL); err != nil {
				slog.Error("password reset mail failed", "error", err, "user", user.ID)
			}
		}
	}

	writeMessage(w, http.StatusOK, forgotPasswordMessage)
}

// ResetPassword redeems a reset token and sets the new password. Tokens
// are single use.
func (a *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !bindJSON(w, r, &req) {
		return
	}

	userID, ok, err := a.resets.Consume(r.Context(), req.Token)
	if err != nil {
		serverError(w, r, "consume reset token", err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	if err := a.userStore.SetPassword(r.Context(), userID, req.Password); err != nil {
		serverError(w, r, "set password", err)
		return
	}

	slog.Info("password reset", "user", userID)
	writeMessage(w, http.StatusOK, "Password has been reset")
}
