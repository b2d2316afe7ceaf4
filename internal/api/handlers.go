package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/basetag/internal/apperr"
	"github.com/starford/basetag/internal/checksum"
	"github.com/starford/basetag/internal/models"
	"github.com/starford/basetag/internal/noteservice"
	"github.com/starford/basetag/internal/settings"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *noteservice.Service
	settings *settings.Store
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, store *settings.Store) *Handler {
	return &Handler{svc: svc, settings: store}
}

// notePath extracts the note path from the URL wildcard.
// Supports encoded slashes (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeNoteError maps service errors to HTTP responses.
func writeNoteError(w http.ResponseWriter, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNotMarkdown):
		writeJSON(w, http.StatusBadRequest, errorBody("not a markdown note"))
	default:
		slog.Error("note request failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with their tags and pill labels
//	@Tags			notes
//	@Produce		json
//	@Param			tag		query		string	false	"Only notes carrying this tag or label"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListNotes(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if tag := strings.TrimPrefix(r.URL.Query().Get("tag"), "#"); tag != "" {
		items = filterTag(items, tag)
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

func filterTag(items []models.NoteTags, tag string) []models.NoteTags {
	out := make([]models.NoteTags, 0, len(items))
	for _, it := range items {
		for _, t := range it.Tags {
			if t.Tag == tag || t.Label == tag {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// GetNoteTags handles GET /api/notes/*.
//
//	@Summary		Get the tags of a single note
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	models.NoteTags
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNoteTags(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	tags, err := h.svc.NoteTags(r.Context(), path)
	if err != nil {
		writeNoteError(w, path, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Read the selector settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	SettingsResponse
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Replace selector lists and save them
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateSettingsRequest	true	"Lists to replace"
//	@Success		200		{object}	SettingsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	next, err := h.settings.Update(func(s *settings.Settings) {
		if req.CustomTagSelectors != nil {
			s.CustomTagSelectors = *req.CustomTagSelectors
		}
		if req.CustomTagContainerSelectors != nil {
			s.CustomTagContainerSelectors = *req.CustomTagContainerSelectors
		}
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidSelector) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("update settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	slog.Info("settings: updated",
		slog.String("tag_selectors", strings.Join(next.CustomTagSelectors, ",")),
		slog.String("container_selectors", strings.Join(next.CustomTagContainerSelectors, ",")))
	writeJSON(w, http.StatusOK, next)
}

// ServeNote handles GET /notes/*: the reading view of a note.
func (h *Handler) ServeNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	page, err := h.svc.RenderNote(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, apperr.ErrNotMarkdown):
			http.Error(w, "not a markdown note", http.StatusBadRequest)
		default:
			slog.Error("render note failed", slog.String("path", path), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	etag := checksum.ETag(page.Checksum)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page.HTML))
}
