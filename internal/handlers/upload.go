package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/storage"
)

// Upload handles image uploads for cover images and avatars.
type Upload struct {
	uploader storage.Uploader
}

// NewUpload creates the upload handler.
func NewUpload(uploader storage.Uploader) *Upload {
	return &Upload{uploader: uploader}
}

// Create stores the multipart "file" field. The content must sniff and
// decode as a JPEG, PNG, GIF or WebP image no larger than 5 MB; the
// client's declared type and file name are ignored.
func (h *Upload) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Limit request body to the image size plus room for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+64<<10)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeMessage(w, http.StatusBadRequest, "File size must be less than 5MB")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxImageSize {
		writeMessage(w, http.StatusBadRequest, "File size must be less than 5MB")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		serverError(w, r, "read upload", err)
		return
	}

	contentType, ext, err := storage.DetectImage(data)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		writeMessage(w, http.StatusBadRequest, "File size must be less than 5MB")
		return
	case err != nil:
		writeMessage(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	name := storage.FileName(time.Now(), ext)
	url, err := h.uploader.Save(r.Context(), name, contentType, data)
	if err != nil {
		serverError(w, r, "store upload", err)
		return
	}

	slog.Info("upload stored", "name", name, "type", contentType, "size", len(data), "user", sess.UserID)
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
