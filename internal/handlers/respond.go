// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the Inkwell JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/store"
)

// genericError is the body of every 500 response. Details go to the log.
const genericError = "Something went wrong"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeMessage writes a {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// serverError logs err and sends the generic 500 response.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "method", r.Method, "path", r.URL.Path)
	writeMessage(w, http.StatusInternalServerError, genericError)
}

// storeError maps store errors to responses: uniqueness conflicts become
// 409 with a readable message, anything else is a 500.
func storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, store.ErrConflict) {
		writeMessage(w, http.StatusConflict, conflictMessage(err))
		return
	}
	serverError(w, r, msg, err)
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrSlugTaken):
		return "A post with this slug already exists"
	case errors.Is(err, store.ErrCategorySlugTaken):
		return "A category with this slug already exists"
	case errors.Is(err, store.ErrUserExists):
		return "User with this email already exists"
	case errors.Is(err, store.ErrUsernameTaken):
		return "Username is already taken"
	case errors.Is(err, store.ErrAlreadySubscribed):
		return "Email already subscribed"
	}
	return "Conflict"
}
