package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lenteapp/lente/internal/api"
	core "github.com/lenteapp/lente/internal/session"
)

// maxUploadBytes caps analysis uploads at 16 MiB, matching the backend limit
const maxUploadBytes = 16 << 20

// UploadPage renders the image upload form
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "upload"
	h.renderTemplate(w, "upload.html", data)
}

// Analyze handles the upload form submission: it forwards the image to the
// analysis endpoint and renders the detected objects.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderUploadError(w, r, "The image is too large or the upload was malformed.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.renderUploadError(w, r, "Choose an image to analyze.")
		return
	}
	defer file.Close()

	if !isSupportedImage(header.Filename) {
		h.renderUploadError(w, r, "Only JPEG, PNG and GIF images are supported.")
		return
	}

	correlationID := uuid.NewString()
	h.log.Debug("forwarding image for analysis",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("correlation_id", correlationID))

	sessions := h.Sessions(r, w)
	resp, err := sessions.API().Analyze(r.Context(), header.Filename, file, correlationID)
	if err != nil {
		if sessionTornDown(err) {
			// Refresh failed mid-request; the cookie session is already gone
			h.clearSessionAndRedirect(w, r)
			return
		}
		h.log.Error("analysis failed", slog.String("error", err.Error()))
		h.renderUploadError(w, r, "Analysis failed. Please try again.")
		return
	}

	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "upload"
	data["Result"] = resp.Data
	data["Filename"] = header.Filename
	h.renderTemplate(w, "result.html", data)
}

func (h *Handler) renderUploadError(w http.ResponseWriter, r *http.Request, message string) {
	data := h.newTemplateData(r, w)
	data["CurrentPage"] = "upload"
	data["Message"] = message
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderTemplate(w, "upload.html", data)
}

// sessionTornDown reports whether the failure came out of the refresh cycle
// ending the session (rejected or missing refresh token). Only then may the
// cookie session be dropped; a transient backend or network failure must not
// log the user out.
func sessionTornDown(err error) bool {
	return errors.Is(err, api.ErrRefreshDenied) || errors.Is(err, core.ErrNoRefreshToken)
}

// isSupportedImage checks the filename extension against the formats the
// analysis service accepts.
func isSupportedImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
