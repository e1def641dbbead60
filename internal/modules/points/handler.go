package points

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/georgemunganga/tripfluencer-admin/internal/modules/auth"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/userdirectory"
	"github.com/go-chi/chi/v5"
)

// AccountView is an account enriched with user display data.
type AccountView struct {
	*Account
	UserName     string `json:"user_name,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Handler exposes TripFluencer points HTTP endpoints.
type Handler struct {
	service   Service
	directory userdirectory.Directory
}

func NewHandler(service Service, directory userdirectory.Directory) *Handler {
	return &Handler{service: service, directory: directory}
}

// RegisterRoutes mounts the points endpoints; admin guards everything except the per-user read.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/tripfluencer-points", func(r chi.Router) {
		r.Get("/user/{userId}", h.getUserPoints) // GET   /admin/auth/tripfluencer-points/user/{userId}

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.listActive)                                // GET   /admin/auth/tripfluencer-points
			r.Post("/add", h.addPoints)                             // POST  /admin/auth/tripfluencer-points/add
			r.Post("/deduct", h.deductPoints)                       // POST  /admin/auth/tripfluencer-points/deduct
			r.Get("/top-earners", h.topEarners)                     // GET   /admin/auth/tripfluencer-points/top-earners
			r.Get("/statistics", h.statistics)                      // GET   /admin/auth/tripfluencer-points/statistics
			r.Patch("/user/{userId}/toggle-active", h.toggleActive) // PATCH /admin/auth/tripfluencer-points/user/{userId}/toggle-active
			r.Post("/user/{userId}/likes", h.awardLikes)            // POST  /admin/auth/tripfluencer-points/user/{userId}/likes
			r.Put("/user/{userId}/sync", h.syncAccount)             // PUT   /admin/auth/tripfluencer-points/user/{userId}/sync
		})
	})
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListActive(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	views := h.views(r.Context(), accounts, auth.BearerToken(r))
	respond(w, http.StatusOK, map[string]interface{}{"tripfluencers": views, "total": len(views)})
}

func (h *Handler) getUserPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, h.view(r.Context(), a, auth.BearerToken(r)))
}

func (h *Handler) addPoints(w http.ResponseWriter, r *http.Request) {
	var req AddPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := h.service.AddPoints(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":      "Points added successfully",
		"points_added": req.Points,
		"tripfluencer": h.view(r.Context(), a, auth.BearerToken(r)),
	})
}

func (h *Handler) deductPoints(w http.ResponseWriter, r *http.Request) {
	var req DeductPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := h.service.DeductPoints(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":         "Points deducted successfully",
		"points_deducted": req.Points,
		"tripfluencer":    h.view(r.Context(), a, auth.BearerToken(r)),
	})
}

func (h *Handler) topEarners(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.TopEarners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	views := h.views(r.Context(), accounts, auth.BearerToken(r))
	respond(w, http.StatusOK, map[string]interface{}{"top_earners": views, "total": len(views)})
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	a, err := h.service.ToggleActive(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":      "Active status toggled successfully",
		"tripfluencer": h.view(r.Context(), a, auth.BearerToken(r)),
		"is_active":    a.IsActive,
	})
}

func (h *Handler) awardLikes(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req AwardLikesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, awarded, err := h.service.AwardPointsForLikes(r.Context(), userID, req.NewLikes)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":        "Points awarded successfully",
		"points_awarded": awarded,
		"tripfluencer":   h.view(r.Context(), a, auth.BearerToken(r)),
	})
}

func (h *Handler) syncAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req SyncAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := h.service.SyncAccount(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":      "TripFluencer synced successfully",
		"tripfluencer": h.view(r.Context(), a, auth.BearerToken(r)),
	})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (h *Handler) view(ctx context.Context, a *Account, token string) AccountView {
	return enrich(ctx, userdirectory.NewBatch(h.directory, token), a)
}

func (h *Handler) views(ctx context.Context, accounts []*Account, token string) []AccountView {
	batch := userdirectory.NewBatch(h.directory, token)
	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, enrich(ctx, batch, a))
	}
	return out
}

func enrich(ctx context.Context, batch *userdirectory.Batch, a *Account) AccountView {
	v := AccountView{Account: a}
	if d, ok := batch.Resolve(ctx, a.UserID); ok {
		v.UserName, v.UserEmail, v.ProfileImage = d.Name, d.Email, d.ProfileImage
	}
	return v
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || id <= 0 {
		respond(w, http.StatusBadRequest, map[string]string{"error": "userId must be a positive integer"})
		return 0, false
	}
	return id, true
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, ErrAccountNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrInsufficientPoints):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, ErrAmountOutOfRange):
		code = http.StatusBadRequest
	case errors.Is(err, ErrLedgerInvariant):
		// stays 500
	case strings.Contains(msg, "required") || strings.Contains(msg, "must be"):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		log.Printf("[points] request failed: %v", err)
		msg = "internal error"
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
