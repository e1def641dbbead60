package redemption

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/georgemunganga/tripfluencer-admin/internal/modules/auth"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/points"
	"github.com/georgemunganga/tripfluencer-admin/internal/modules/userdirectory"
	"github.com/go-chi/chi/v5"
)

// View is a redemption enriched with user display data.
type View struct {
	*Redemption
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Handler exposes redemption HTTP endpoints.
type Handler struct {
	service   Service
	directory userdirectory.Directory
}

func NewHandler(service Service, directory userdirectory.Directory) *Handler {
	return &Handler{service: service, directory: directory}
}

// RegisterRoutes mounts the redemption endpoints. Redeeming and per-user
// history are open to end-users; the rest requires admin.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/redemptions", func(r chi.Router) {
		r.Post("/", h.redeem)                 // POST  /admin/auth/redemptions
		r.Get("/user/{userId}", h.listByUser) // GET   /admin/auth/redemptions/user/{userId}

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.listAll)                     // GET   /admin/auth/redemptions
			r.Get("/status/{status}", h.listByStatus) // GET   /admin/auth/redemptions/status/{status}
			r.Get("/statistics", h.statistics)        // GET   /admin/auth/redemptions/statistics
			r.Post("/expire-old", h.expireOld)        // POST  /admin/auth/redemptions/expire-old
			r.Get("/{id}", h.get)                     // GET   /admin/auth/redemptions/{id}
			r.Patch("/{id}/cancel", h.cancel)         // PATCH /admin/auth/redemptions/{id}/cancel
		})
	})
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	red, err := h.service.Redeem(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"message":    "Points redeemed successfully",
		"redemption": h.view(r.Context(), red, auth.BearerToken(r)),
	})
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	views := h.views(r.Context(), list, auth.BearerToken(r))
	respond(w, http.StatusOK, map[string]interface{}{"redemptions": views, "total": len(views)})
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		respond(w, http.StatusBadRequest, map[string]string{"error": "userId must be a positive integer"})
		return
	}
	list, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	views := h.views(r.Context(), list, auth.BearerToken(r))
	respond(w, http.StatusOK, map[string]interface{}{"redemptions": views, "user_id": userID, "total": len(views)})
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request) {
	list, status, err := h.service.ListByStatus(r.Context(), chi.URLParam(r, "status"))
	if err != nil {
		respondError(w, err)
		return
	}
	views := h.views(r.Context(), list, auth.BearerToken(r))
	respond(w, http.StatusOK, map[string]interface{}{"redemptions": views, "status": status, "total": len(views)})
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

func (h *Handler) expireOld(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ExpireOld(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "Old redemptions expired successfully",
		"expired": n,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	red, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, h.view(r.Context(), red, auth.BearerToken(r)))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	red, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message":    "Redemption cancelled and points refunded successfully",
		"redemption": h.view(r.Context(), red, auth.BearerToken(r)),
	})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (h *Handler) view(ctx context.Context, red *Redemption, token string) View {
	return enrich(ctx, userdirectory.NewBatch(h.directory, token), red)
}

func (h *Handler) views(ctx context.Context, list []*Redemption, token string) []View {
	batch := userdirectory.NewBatch(h.directory, token)
	out := make([]View, 0, len(list))
	for _, red := range list {
		out = append(out, enrich(ctx, batch, red))
	}
	return out
}

func enrich(ctx context.Context, batch *userdirectory.Batch, red *Redemption) View {
	v := View{Redemption: red}
	if d, ok := batch.Resolve(ctx, red.UserID); ok {
		v.UserName, v.UserEmail = d.Name, d.Email
	}
	return v
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, ErrRedemptionNotFound), errors.Is(err, points.ErrAccountNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrRedemptionNotActive):
		code = http.StatusConflict
	case errors.Is(err, points.ErrInsufficientPoints):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, points.ErrLedgerInvariant):
		// stays 500
	case strings.Contains(msg, "required") || strings.Contains(msg, "must be"):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		log.Printf("[redemption] request failed: %v", err)
		msg = "internal error"
	}
	respond(w, code, map[string]string{"error": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
