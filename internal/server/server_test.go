package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Environment: config.EnvTest,
		Origin:      "http://localhost:4200",
		JWT:         testutil.JWTConfig(),
		RateLimit:   config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	engine := NewEngine(ctx, cfg, testutil.NewDB(t), &testutil.Publisher{})
	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path, token string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, resp
}

type authData struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (a *testAPI) signup(body map[string]any) authData {
	a.t.Helper()
	w, resp := a.do(http.MethodPost, "/api/v1/auth/signup", "", body)
	if w.Code != http.StatusCreated {
		a.t.Fatalf("signup: status = %d body=%s", w.Code, w.Body)
	}
	var data authData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		a.t.Fatal(err)
	}
	return data
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func TestAuthScenario(t *testing.T) {
	api := newTestAPI(t)

	api.signup(map[string]any{
		"email": "a@x.com", "password": "password1", "firstName": "Ada", "lastName": "Lovelace", "role": "PATIENT",
	})

	w, resp := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@x.com", "password": "password1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d body=%s", w.Code, w.Body)
	}
	var login authData
	if err := json.Unmarshal(resp.Data, &login); err != nil || login.AccessToken == "" {
		t.Fatalf("login data = %s (%v)", resp.Data, err)
	}
	cookie := refreshCookie(w)
	if cookie == nil || !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode || cookie.Path != "/api/v1/auth" {
		t.Fatalf("refresh cookie = %+v", cookie)
	}
	if strings.Contains(w.Body.String(), cookie.Value) {
		t.Error("refresh token leaked into the response body")
	}

	w, wrong := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrongpass"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d", w.Code)
	}
	w, unknown := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "b@x.com", "password": "password1"})
	if w.Code != http.StatusUnauthorized || unknown.Message != wrong.Message {
		t.Fatalf("unknown email: status = %d message = %q vs %q", w.Code, unknown.Message, wrong.Message)
	}

	w, resp = api.do(http.MethodGet, "/api/v1/auth/profile", login.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status = %d", w.Code)
	}
	if !strings.Contains(string(resp.Data), `"email":"a@x.com"`) {
		t.Errorf("profile data = %s", resp.Data)
	}
	lower := strings.ToLower(w.Body.String())
	if strings.Contains(lower, "password") || strings.Contains(lower, "refreshtoken") {
		t.Errorf("profile leaks secrets: %s", w.Body)
	}

	if w, _ := api.do(http.MethodGet, "/api/v1/auth/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("profile without token: status = %d", w.Code)
	}
}

func TestSignupConflictAndValidation(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{"email": "a@x.com", "password": "password1", "firstName": "A", "lastName": "B", "role": "patient"}
	api.signup(body)

	if w, _ := api.do(http.MethodPost, "/api/v1/auth/signup", "", body); w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d", w.Code)
	}
	body["email"] = "c@x.com"
	body["password"] = "short"
	if w, _ := api.do(http.MethodPost, "/api/v1/auth/signup", "", body); w.Code != http.StatusBadRequest {
		t.Errorf("short password: status = %d", w.Code)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	api := newTestAPI(t)
	api.signup(map[string]any{"email": "a@x.com", "password": "password1", "firstName": "A", "lastName": "B", "role": "PATIENT"})

	w, _ := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@x.com", "password": "password1"})
	first := refreshCookie(w)

	if w, _ := api.do(http.MethodPost, "/api/v1/auth/refresh", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status = %d", w.Code)
	}

	w, resp := api.do(http.MethodPost, "/api/v1/auth/refresh", "", nil, first)
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), "accessToken") {
		t.Fatalf("refresh: status = %d body=%s", w.Code, w.Body)
	}
	second := refreshCookie(w)
	if second == nil || second.Value == first.Value {
		t.Fatal("refresh cookie not rotated")
	}

	if w, _ := api.do(http.MethodPost, "/api/v1/auth/refresh", "", nil, first); w.Code != http.StatusUnauthorized {
		t.Errorf("replayed cookie: status = %d", w.Code)
	}

	if w, _ := api.do(http.MethodPost, "/api/v1/auth/logout", "", nil, second); w.Code != http.StatusOK {
		t.Errorf("logout: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodPost, "/api/v1/auth/refresh", "", nil, second); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: status = %d", w.Code)
	}
}

func TestAppointmentsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	p1 := api.signup(map[string]any{"email": "p1@x.com", "password": "password1", "firstName": "P", "lastName": "One", "role": "PATIENT"})
	p2 := api.signup(map[string]any{"email": "p2@x.com", "password": "password1", "firstName": "P", "lastName": "Two", "role": "PATIENT"})
	doc := api.signup(map[string]any{
		"email": "d@x.com", "password": "password1", "firstName": "D", "lastName": "Oc", "role": "DOCTOR",
		"specialty": "Cardiology", "licenseNumber": "LIC-1",
	})

	w, resp := api.do(http.MethodGet, "/api/v1/doctors", p1.AccessToken, nil)
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), doc.User.ID) {
		t.Fatalf("doctors: status = %d data=%s", w.Code, resp.Data)
	}

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	day := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	slot := func(h, m, minutes int) map[string]any {
		start := day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
		return map[string]any{
			"doctorId":  doc.User.ID,
			"startTime": start.Format(time.RFC3339),
			"endTime":   start.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
			"reason":    "Checkup",
		}
	}

	w, resp = api.do(http.MethodPost, "/api/v1/appointments", p1.AccessToken, slot(10, 0, 30))
	if w.Code != http.StatusCreated {
		t.Fatalf("book: status = %d body=%s", w.Code, w.Body)
	}
	var appt struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &appt); err != nil || appt.Status != "PENDING" {
		t.Fatalf("appointment = %s (%v)", resp.Data, err)
	}

	if w, _ := api.do(http.MethodPost, "/api/v1/appointments", p2.AccessToken, slot(10, 15, 30)); w.Code != http.StatusBadRequest {
		t.Errorf("overlap: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodPost, "/api/v1/appointments", p2.AccessToken, slot(10, 30, 30)); w.Code != http.StatusCreated {
		t.Errorf("adjacent: status = %d body=%s", w.Code, w.Body)
	}
	if w, _ := api.do(http.MethodPost, "/api/v1/appointments", doc.AccessToken, slot(12, 0, 30)); w.Code != http.StatusForbidden {
		t.Errorf("doctor booking: status = %d", w.Code)
	}

	path := "/api/v1/appointments/" + appt.ID
	if w, _ := api.do(http.MethodPatch, path+"/status", p2.AccessToken, map[string]string{"status": "CANCELLED"}); w.Code != http.StatusForbidden {
		t.Errorf("other patient update: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodDelete, path, p2.AccessToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("other patient delete: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodDelete, path, doc.AccessToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("doctor delete: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodPatch, path+"/status", doc.AccessToken, map[string]string{"status": "BOGUS"}); w.Code != http.StatusBadRequest {
		t.Errorf("bogus status: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodPatch, path+"/status", doc.AccessToken, map[string]string{"status": "CONFIRMED"}); w.Code != http.StatusOK {
		t.Errorf("confirm: status = %d body=%s", w.Code, w.Body)
	}
	if w, _ := api.do(http.MethodDelete, path, p1.AccessToken, nil); w.Code != http.StatusOK {
		t.Errorf("owner delete: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodGet, path, p1.AccessToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted: status = %d", w.Code)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	p := api.signup(map[string]any{"email": "p@x.com", "password": "password1", "firstName": "P", "lastName": "One", "role": "PATIENT"})

	if w, _ := api.do(http.MethodGet, "/api/v1/users", p.AccessToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("patient listing users: status = %d", w.Code)
	}
	if w, _ := api.do(http.MethodGet, "/api/v1/users/doctor-patients", p.AccessToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("patient listing patients: status = %d", w.Code)
	}
}

func TestChatAndHealth(t *testing.T) {
	api := newTestAPI(t)

	w, resp := api.do(http.MethodPost, "/api/v1/chat", "", map[string]string{"message": "How do I book an appointment?"})
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), "reply") {
		t.Fatalf("chat: status = %d body=%s", w.Code, w.Body)
	}
	if w, _ := api.do(http.MethodPost, "/api/v1/chat", "", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty chat: status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status = %d", rec.Code)
	}
}
