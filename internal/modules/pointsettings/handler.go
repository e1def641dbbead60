package pointsettings

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes point tier HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the tier endpoints; admin guards the mutating ones.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/points/settings", func(r chi.Router) {
		r.Get("/", h.listTiers)                         // GET  /admin/auth/points/settings
		r.Get("/calculate", h.calculate)                // GET  /admin/auth/points/settings/calculate?likes=N
		r.Get("/{tierName}", h.getTier)                 // GET  /admin/auth/points/settings/{tierName}
		r.With(admin).Put("/bulk", h.bulkUpdate)        // PUT  /admin/auth/points/settings/bulk
		r.With(admin).Put("/{tierName}", h.updateTier)  // PUT  /admin/auth/points/settings/{tierName}
		r.With(admin).Post("/initialize", h.initialize) // POST /admin/auth/points/settings/initialize
	})
}

func (h *Handler) listTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.GetAllTiers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"settings": tiers, "total": len(tiers)})
}

func (h *Handler) getTier(w http.ResponseWriter, r *http.Request) {
	tier, err := h.service.GetTier(r.Context(), chi.URLParam(r, "tierName"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, tier)
}

func (h *Handler) updateTier(w http.ResponseWriter, r *http.Request) {
	var req UpdateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	name := chi.URLParam(r, "tierName")
	req.TierName = name

	tier, err := h.service.UpdateTier(r.Context(), name, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":  "Point settings updated successfully",
		"settings": tier,
	})
}

func (h *Handler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	var reqs []UpdateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	tiers, err := h.service.BulkUpdateTiers(r.Context(), reqs)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":  "Point settings updated successfully",
		"settings": tiers,
		"total":    len(tiers),
	})
}

func (h *Handler) initialize(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.service.InitializeDefaults(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":  "Default point settings initialized successfully",
		"settings": tiers,
	})
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	likes, err := strconv.Atoi(r.URL.Query().Get("likes"))
	if err != nil || likes < 0 {
		respond(w, http.StatusBadRequest, map[string]string{"error": "likes must be a non-negative integer"})
		return
	}
	points, err := h.service.CalculatePoints(r.Context(), likes)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"likes": likes, "points": points})
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrTierNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrInvalidTier):
		code = http.StatusBadRequest
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("[pointsettings] request failed: %v", err)
		msg = "internal error"
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
