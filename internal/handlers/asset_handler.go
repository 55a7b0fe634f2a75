package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"networth/internal/middleware"
	"networth/internal/models"
	"networth/internal/repository"
)

type AssetHandler struct {
	assets repository.AssetRepository
}

func NewAssetHandler(db *sql.DB) *AssetHandler {
	return &AssetHandler{assets: repository.NewAssetRepository(db)}
}

func (h *AssetHandler) kindFromRequest(w http.ResponseWriter, r *http.Request) (models.AssetKind, bool) {
	key := chi.URLParam(r, "kind")
	kind, ok := models.AssetKindByKey(key)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Invalid asset type")
		return models.AssetKind{}, false
	}
	return kind, true
}

// coerceFields filters the raw body against the kind's schema and converts
// each value to its column type. Unknown fields and empty values are dropped;
// a value that cannot convert is an error.
func coerceFields(kind models.AssetKind, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, f := range kind.Fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}
		switch f.Type {
		case models.FieldNumber:
			switch n := v.(type) {
			case float64:
				out[f.Name] = n
			case string:
				if strings.TrimSpace(n) == "" {
					continue
				}
				parsed, err := strconv.ParseFloat(n, 64)
				if err != nil {
					return nil, fmt.Errorf("%s must be a number", f.Name)
				}
				out[f.Name] = parsed
			default:
				return nil, fmt.Errorf("%s must be a number", f.Name)
			}
		case models.FieldDate:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD)", f.Name)
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD)", f.Name)
			}
			out[f.Name] = t
		default:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string", f.Name)
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out[f.Name] = s
		}
	}
	return out, nil
}

// List godoc
// @Tags Assets
// @Summary List entries of one asset type for the signed-in user
// @Param kind path string true "Asset type"
// @Produce json
// @Success 200 {array} object
// @Router /assets/{kind} [get]
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindFromRequest(w, r)
	if !ok {
		return
	}
	userID := middleware.UserID(r.Context())

	items, err := h.assets.List(r.Context(), kind, userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create godoc
// @Tags Assets
// @Summary Create an entry of one asset type
// @Param kind path string true "Asset type"
// @Accept json
// @Produce json
// @Success 201 {object} object
// @Router /assets/{kind} [post]
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindFromRequest(w, r)
	if !ok {
		return
	}
	userID := middleware.UserID(r.Context())

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := coerceFields(kind, raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, f := range kind.Fields {
		if f.Required {
			if _, ok := fields[f.Name]; !ok {
				writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", f.Name))
				return
			}
		}
	}
	if _, ok := fields["currency"]; !ok {
		fields["currency"] = "USD"
	}

	id := uuid.New().String()
	if err := h.assets.Create(r.Context(), kind, userID, id, fields); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update godoc
// @Tags Assets
// @Summary Update an entry of one asset type
// @Param kind path string true "Asset type"
// @Param id path string true "Entry ID"
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Router /assets/{kind}/{id} [put]
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindFromRequest(w, r)
	if !ok {
		return
	}
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := coerceFields(kind, raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.assets.Update(r.Context(), kind, userID, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSONMessage(w, http.StatusOK, "Updated successfully")
}

// Delete godoc
// @Tags Assets
// @Summary Delete an entry of one asset type
// @Param kind path string true "Asset type"
// @Param id path string true "Entry ID"
// @Produce json
// @Success 200 {object} object
// @Router /assets/{kind}/{id} [delete]
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kindFromRequest(w, r)
	if !ok {
		return
	}
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.assets.Delete(r.Context(), kind, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSONMessage(w, http.StatusOK, "Deleted successfully")
}
