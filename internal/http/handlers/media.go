package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"localserv/internal/domain"
	"localserv/internal/providers/textenhance"
	"localserv/internal/storage"
)

// multipart envelope allowance on top of the file limit
const uploadOverhead = 64 << 10

// EnhanceText improves a listing description. The draft is returned unchanged when
// the text service fails.
func (a *App) EnhanceText(w http.ResponseWriter, r *http.Request) {
	var req textenhance.Request
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title or description is required")
		return
	}
	res, err := a.Enhancer.Enhance(r.Context(), req)
	if err != nil || res == nil {
		a.Logger.Warn().Err(err).Msg("enhance failed, returning draft")
		res = &textenhance.Result{Text: req.Description, Provider: "none", FallbackReason: "error"}
	}
	a.json(w, http.StatusOK, res)
}

// Upload stores an image in the bucket named by the URL. Both multipart forms
// (field "file") and raw bodies are accepted.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	limit := a.Uploads.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+uploadOverhead)

	data, err := readUpload(r, limit)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "file is too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	obj, err := a.Uploads.UploadImage(r.Context(), bucket, a.currentUserID(r), data)
	switch {
	case errors.Is(err, storage.ErrUnknownBucket):
		a.error(w, http.StatusNotFound, "unknown_bucket", "unknown bucket")
	case errors.Is(err, storage.ErrTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", err.Error())
	case errors.Is(err, storage.ErrUnsupportedType):
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_type", err.Error())
	case errors.Is(err, storage.ErrEmptyFile):
		a.error(w, http.StatusBadRequest, "empty_file", "file is empty")
	case err != nil:
		a.fail(w, r, err)
	default:
		a.Logger.Info().Str("bucket", obj.Bucket).Str("path", obj.Path).Int("size", obj.Size).Msg("file uploaded")
		a.json(w, http.StatusCreated, obj)
	}
}

func readUpload(r *http.Request, limit int64) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return io.ReadAll(io.LimitReader(r.Body, limit+1))
	}
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, limit+1))
}

// UpdateProfile applies a partial change to the actor's own profile.
func (a *App) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if !a.decode(w, r, &update) {
		return
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		a.error(w, http.StatusBadRequest, "validation", "name must not be empty")
		return
	}
	p, err := a.Profiles.UpdateProfile(r.Context(), a.currentUserID(r), update)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, p)
}
