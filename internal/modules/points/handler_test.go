package points

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/tripfluencer-admin/internal/modules/userdirectory"
	"github.com/go-chi/chi/v5"
)

type stubDirectory struct {
	calls int
	err   error
}

func (s *stubDirectory) Lookup(ctx context.Context, userID int64, token string) (userdirectory.Details, error) {
	s.calls++
	if s.err != nil {
		return userdirectory.Details{}, s.err
	}
	return userdirectory.Details{Name: "Ada", Email: "ada@example.org"}, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(repo Repository, dir userdirectory.Directory) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(NewService(repo, fixedCalculator{perLike: 1}), dir)
	r.Route("/admin/auth", func(r chi.Router) {
		h.RegisterRoutes(r, passthrough)
	})
	return r
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestGetUserPointsEnrichedWithToken(t *testing.T) {
	existing := NewAccount(4)
	existing.Credit(12)
	dir := &stubDirectory{}
	router := newTestRouter(newMemoryRepository(existing), dir)

	req := httptest.NewRequest(http.MethodGet, "/admin/auth/tripfluencer-points/user/4", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var body map[string]interface{}
	decode(t, rr, &body)
	if body["user_name"] != "Ada" || body["current_points"] != float64(12) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetUserPointsWithoutTokenSkipsDirectory(t *testing.T) {
	dir := &stubDirectory{}
	router := newTestRouter(newMemoryRepository(NewAccount(4)), dir)

	req := httptest.NewRequest(http.MethodGet, "/admin/auth/tripfluencer-points/user/4", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if dir.calls != 0 {
		t.Fatalf("expected no directory lookup, got %d", dir.calls)
	}
	var body map[string]interface{}
	decode(t, rr, &body)
	if _, ok := body["user_name"]; ok {
		t.Fatalf("unexpected enrichment: %v", body)
	}
}

func TestGetUserPointsNotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepository(), &stubDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/admin/auth/tripfluencer-points/user/4", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAddPointsHandlerUsesPlaceholderOnDirectoryFailure(t *testing.T) {
	dir := &stubDirectory{err: userdirectory.ErrUnavailable}
	router := newTestRouter(newMemoryRepository(), dir)

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/tripfluencer-points/add",
		strings.NewReader(`{"user_id": 21, "points": 15, "reason": "campaign"}`))
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	var body struct {
		PointsAdded  int `json:"points_added"`
		Tripfluencer struct {
			CurrentPoints int    `json:"current_points"`
			UserName      string `json:"user_name"`
			UserEmail     string `json:"user_email"`
		} `json:"tripfluencer"`
	}
	decode(t, rr, &body)
	if body.PointsAdded != 15 || body.Tripfluencer.CurrentPoints != 15 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Tripfluencer.UserName != "User 21" || body.Tripfluencer.UserEmail != "user21@example.com" {
		t.Fatalf("expected placeholder details, got %+v", body.Tripfluencer)
	}
}

func TestDeductPointsHandlerInsufficient(t *testing.T) {
	existing := NewAccount(4)
	existing.Credit(5)
	router := newTestRouter(newMemoryRepository(existing), &stubDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/tripfluencer-points/deduct",
		strings.NewReader(`{"user_id": 4, "points": 6}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestAwardLikesHandler(t *testing.T) {
	router := newTestRouter(newMemoryRepository(), &stubDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/admin/auth/tripfluencer-points/user/4/likes",
		strings.NewReader(`{"new_likes": 7}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var body map[string]interface{}
	decode(t, rr, &body)
	if body["points_awarded"] != float64(7) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestBadUserIDParam(t *testing.T) {
	router := newTestRouter(newMemoryRepository(), &stubDirectory{})

	req := httptest.NewRequest(http.MethodPatch, "/admin/auth/tripfluencer-points/user/abc/toggle-active", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrAccountNotFound, http.StatusNotFound},
		{ErrInsufficientPoints, http.StatusUnprocessableEntity},
		{ErrAmountOutOfRange, http.StatusBadRequest},
		{errors.New("user_id is required"), http.StatusBadRequest},
		{ErrLedgerInvariant, http.StatusInternalServerError},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		respondError(rr, tc.err)
		if rr.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, rr.Code)
		}
	}
}

// failingRepository fails every listing with a driver-level error.
type failingRepository struct {
	*memoryRepository
	err error
}

func (f failingRepository) ListActive(ctx context.Context) ([]*Account, error) {
	return nil, f.err
}

func TestUnexpectedErrorsAreNotLeaked(t *testing.T) {
	repo := failingRepository{
		memoryRepository: newMemoryRepository(),
		err:              errors.New(`query points_accounts: pq: password authentication failed for user "ledger_admin"`),
	}
	router := newTestRouter(repo, &stubDirectory{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/auth/tripfluencer-points", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	decode(t, rr, &body)
	if body["error"] != "internal error" {
		t.Fatalf("expected a generic error body, got %v", body)
	}
}

func TestAddPointsHandlerRejectsOutOfRangeAmounts(t *testing.T) {
	router := newTestRouter(newMemoryRepository(), &stubDirectory{})

	for _, points := range []string{"9223372036854775807", "3000000000"} {
		req := httptest.NewRequest(http.MethodPost, "/admin/auth/tripfluencer-points/add",
			strings.NewReader(`{"user_id": 4, "points": `+points+`}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("points=%s: expected 400, got %d body=%s", points, rr.Code, rr.Body.String())
		}
	}
}
