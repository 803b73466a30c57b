package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/forkline/storefront/api/controllers"
	"github.com/forkline/storefront/api/middleware"
	"github.com/forkline/storefront/internal/cart"
	"github.com/forkline/storefront/internal/media"
	"github.com/forkline/storefront/internal/menu"
	"github.com/forkline/storefront/internal/restaurants"
	pkgAuth "github.com/forkline/storefront/pkg/auth"
	"github.com/forkline/storefront/pkg/config"
	"github.com/forkline/storefront/pkg/db/dbtest"
	"github.com/forkline/storefront/pkg/enums"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/metrics"
)

// Wednesday 12:00 UTC.
var fixedNow = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubMediaService struct {
	input media.UploadInput
	body  []byte
}

func (s *stubMediaService) Upload(_ context.Context, in media.UploadInput) (*media.UploadOutput, error) {
	s.input = in
	s.body, _ = io.ReadAll(in.File)
	return &media.UploadOutput{PublicID: "forkline/menu_item/x", URL: "https://cdn.test/x.png", ContentType: in.MimeType}, nil
}

func (s *stubMediaService) Delete(context.Context, string) error { return nil }

func (s *stubMediaService) MaxUploadBytes() int64 { return 1 << 20 }

type harness struct {
	handler http.Handler
	cfg     *config.Config
	media   *stubMediaService
}

func newHarness(t *testing.T, readiness map[string]controllers.Pinger) harness {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", CORSAllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "forkline", ExpirationMinutes: 60},
	}
	logg := logger.Nop()
	db := dbtest.Open(t)

	restaurantSvc, err := restaurants.NewService(restaurants.ServiceParams{
		Repo:   restaurants.NewRepository(db),
		Logger: logg,
		Now:    func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("restaurant service: %v", err)
	}
	menuSvc, err := menu.NewService(menu.NewRepository(db))
	if err != nil {
		t.Fatalf("menu service: %v", err)
	}
	storages := map[string]*cart.MemoryStorage{}
	carts, err := cart.NewSessionService(cart.SessionParams{
		Storage: func(sessionID string) (cart.Storage, error) {
			if _, ok := storages[sessionID]; !ok {
				storages[sessionID] = cart.NewMemoryStorage()
			}
			return storages[sessionID], nil
		},
		Catalog: menuSvc,
		Images:  menu.NewImageResolver(nil),
		Gate:    restaurantSvc,
		Logger:  logg,
	})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	reg := prometheus.NewRegistry()
	mediaSvc := &stubMediaService{}
	h := NewRouter(Params{
		Config:      cfg,
		Logger:      logg,
		Readiness:   readiness,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Restaurants: restaurantSvc,
		Menu:        menuSvc,
		Carts:       carts,
		Media:       mediaSvc,
	})
	return harness{handler: h, cfg: cfg, media: mediaSvc}
}

func (h harness) token(t *testing.T, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgAuth.MintStaffToken(h.cfg.JWT, time.Now(), pkgAuth.StaffTokenPayload{Subject: "staff-1", Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (h harness) do(t *testing.T, method, path, token, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)

	var payload map[string]any
	if resp.Body.Len() > 0 && strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp, payload
}

func dataField(t *testing.T, payload map[string]any, key string) any {
	t.Helper()
	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data in %v", payload)
	}
	return data[key]
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t, map[string]controllers.Pinger{"db": stubPinger{}, "redis": stubPinger{}})
	resp, _ := h.do(t, http.MethodGet, "/health/live", "", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Forkline-Env") != "test" {
		t.Fatal("expected env header")
	}
	resp, _ = h.do(t, http.MethodGet, "/health/ready", "", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	down := newHarness(t, map[string]controllers.Pinger{"redis": stubPinger{err: errors.New("refused")}})
	resp, _ = down.do(t, http.MethodGet, "/health/ready", "", "", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	h := newHarness(t, nil)

	resp, _ := h.do(t, http.MethodPost, "/api/admin/v1/restaurants", "", `{}`, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	resp, _ = h.do(t, http.MethodPost, "/api/admin/v1/restaurants", "not-a-jwt", `{}`, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	resp, _ = h.do(t, http.MethodPost, "/api/admin/v1/restaurants", h.token(t, enums.StaffRoleViewer), `{}`, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestStorefrontFlow(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.token(t, enums.StaffRoleAdmin)

	resp, payload := h.do(t, http.MethodPost, "/api/admin/v1/restaurants", admin, `{
		"slug": "trattoria-roma",
		"name": "Trattoria Roma",
		"address": "1 Main St",
		"time_zone": "UTC",
		"schedule": {
			"monday": {"open": "09:00", "close": "17:00"},
			"tuesday": {"open": "09:00", "close": "17:00"},
			"wednesday": {"open": "09:00", "close": "17:00"},
			"thursday": {"open": "09:00", "close": "17:00"},
			"friday": {"open": "09:00", "close": "17:00"},
			"saturday": {"closed": true},
			"sunday": {"closed": true}
		}
	}`, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	restaurantID := dataField(t, payload, "id").(string)
	status := dataField(t, payload, "status").(map[string]any)
	if status["verdict"] != "open" {
		t.Fatalf("expected open restaurant at noon, got %v", status)
	}

	resp, payload = h.do(t, http.MethodPost, "/api/admin/v1/restaurants/"+restaurantID+"/menu", admin,
		`{"name": "Tiramisu", "price": "6.50"}`, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	menuItemID := dataField(t, payload, "id").(string)

	resp, payload = h.do(t, http.MethodGet, "/api/v1/restaurants", "", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if list := dataField(t, payload, "restaurants").([]any); len(list) != 1 {
		t.Fatalf("expected one restaurant, got %v", list)
	}

	resp, payload = h.do(t, http.MethodGet, "/api/v1/restaurants/"+restaurantID+"/menu", "", "", nil)
	if items := dataField(t, payload, "items").([]any); resp.Code != http.StatusOK || len(items) != 1 {
		t.Fatalf("unexpected menu %d %v", resp.Code, payload)
	}

	session := map[string]string{middleware.CartSessionHeader: "flow-session-01"}
	resp, payload = h.do(t, http.MethodPost, "/api/v1/cart/items", "", `{"menu_item_id":"`+menuItemID+`","quantity":2}`, session)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if dataField(t, payload, "total") != "13" {
		t.Fatalf("unexpected total %v", dataField(t, payload, "total"))
	}
	lines := dataField(t, payload, "lines").([]any)
	line := lines[0].(map[string]any)
	if line["image_ref"] != "/images/dishes/tiramisu.jpg" {
		t.Fatalf("expected resolved image, got %v", line["image_ref"])
	}

	resp, _ = h.do(t, http.MethodPut, "/api/admin/v1/restaurants/"+restaurantID+"/flags", admin, `{"temporarily_closed": true}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	resp, _ = h.do(t, http.MethodPost, "/api/v1/cart/items", "", `{"menu_item_id":"`+menuItemID+`"}`, session)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a closed restaurant got %d", resp.Code)
	}

	resp, payload = h.do(t, http.MethodGet, "/api/v1/restaurants/"+restaurantID, "", "", nil)
	status = dataField(t, payload, "status").(map[string]any)
	if resp.Code != http.StatusOK || status["reason"] != "temporarily_closed" {
		t.Fatalf("unexpected status %v", status)
	}

	resp, _ = h.do(t, http.MethodDelete, "/api/admin/v1/restaurants/"+restaurantID, admin, "", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	resp, _ = h.do(t, http.MethodGet, "/api/v1/restaurants/"+restaurantID, "", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestImageUploadRoute(t *testing.T) {
	h := newHarness(t, nil)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("kind", "menu_item"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="pie.png"`)
	partHeader.Set("Content-Type", "image/png")
	part, err := form.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("\x89PNG\r\n\x1a\nrest")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	resp, _ := h.do(t, http.MethodPost, "/api/admin/v1/uploads/images", h.token(t, enums.StaffRoleAdmin), body.String(),
		map[string]string{"Content-Type": form.FormDataContentType()})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if h.media.input.Kind != enums.MediaKindMenuItem || h.media.input.MimeType != "image/png" || h.media.input.FileName != "pie.png" {
		t.Fatalf("unexpected upload input %+v", h.media.input)
	}
	if string(h.media.body) != "\x89PNG\r\n\x1a\nrest" {
		t.Fatalf("unexpected body %q", h.media.body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	h.do(t, http.MethodGet, "/health/live", "", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `http_requests_total{method="GET",route="/health/live",status="200"} 1`) {
		t.Fatalf("expected request counter, got:\n%s", resp.Body.String())
	}
}
