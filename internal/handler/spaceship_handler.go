package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spaceship-manager/internal/model"
	"spaceship-manager/internal/service"
	"spaceship-manager/pkg/apierror"
)

type SpaceshipHandler struct {
	service *service.SpaceshipService
}

func NewSpaceshipHandler(service *service.SpaceshipService) *SpaceshipHandler {
	return &SpaceshipHandler{service: service}
}

// List handles GET /spaceships?page=&size=&sort=field,dir (0-based pages).
func (h *SpaceshipHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseIntDefault(query.Get("page"), 0)
	size := parseIntDefault(query.Get("size"), 20)
	sort := query.Get("sort")

	result, err := h.service.List(r.Context(), page, size, sort)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

func (h *SpaceshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ship, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, ship)
}

func (h *SpaceshipHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, apierror.New("BAD_REQUEST", "name query parameter is required", "name", http.StatusBadRequest))
		return
	}

	data, err := h.service.SearchByName(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, data)
}

func (h *SpaceshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SpaceshipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	ship, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, ship)
}

func (h *SpaceshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	defer r.Body.Close()

	var payload model.SpaceshipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	ship, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, ship)
}

func (h *SpaceshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseID reads the id path parameter. Negative ids are passed through so the
// service can reject them; non-numeric ids never reach it.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierror.New("BAD_REQUEST", "id must be an integer", raw, http.StatusBadRequest)
	}
	return id, nil
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
