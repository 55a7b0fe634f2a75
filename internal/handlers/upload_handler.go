package handlers

import (
	"net/http"

	"networth/internal/middleware"
	"networth/internal/services"
)

const maxUploadBytes = 32 << 20

type UploadHandler struct {
	storage *services.DocumentStorage
}

func NewUploadHandler(storage *services.DocumentStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Upload godoc
// @Tags Documents
// @Summary Upload supporting documents (statements, deeds, policies)
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} object
// @Router /documents/upload [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No files provided")
		return
	}

	paths := make([]string, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		key, err := h.storage.Save(r.Context(), userID, header.Filename, f)
		f.Close()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "Failed to store document")
			return
		}
		paths = append(paths, key)
	}

	writeJSON(w, http.StatusCreated, map[string]any{"paths": paths})
}
