package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/logging"
	"github.com/bkkdisplay/confeditor/internal/server/repositories/accounts"
	"github.com/bkkdisplay/confeditor/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	lastCode string
	fail     bool
}

func (n *stubNotifier) SendCode(ctx context.Context, email, code string) error {
	if n.fail {
		return common.ErrorDelivery
	}
	n.lastCode = code
	return nil
}

// client drives the API as one browser: it keeps the session cookie between
// requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newTestClient(t *testing.T, maxUploadsPerDay int) (*client, *stubNotifier) {
	t.Helper()
	logger := logging.NewDiscardLogger()
	repo := accounts.NewMemoryRepository()
	notifier := &stubNotifier{}
	configs := services.NewConfigService(repo, maxUploadsPerDay, logger)
	authSvc := services.NewAuthService(repo, notifier, configs, logger)
	srv := NewServer(authSvc, configs, []byte("test-secret"), time.Hour, logger)
	return &client{t: t, handler: srv.Handler()}, notifier
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func (c *client) register(notifier *stubNotifier, email, password string) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/auth/continue", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	rec = c.do(http.MethodPost, "/api/auth/verify", `{"code":"`+notifier.lastCode+`"}`)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSessionCookieIssuedOnFirstContact(t *testing.T) {
	c, _ := newTestClient(t, 10)

	rec := c.do(http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, c.cookies)
	assert.Equal(t, "confeditor_session", c.cookies[0].Name)

	body := decodeBody(t, rec)
	assert.Equal(t, "anonymous", body["stage"])
}

func TestCookieKeepsSessionAcrossRequests(t *testing.T) {
	c, notifier := newTestClient(t, 10)

	rec := c.do(http.MethodPost, "/api/auth/continue", `{"email":"a@b.co","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "verification_sent", decodeBody(t, rec)["status"])

	// the follow-up request lands on the same pending session
	rec = c.do(http.MethodPost, "/api/auth/verify", `{"code":"`+notifier.lastCode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/session", "")
	body := decodeBody(t, rec)
	assert.Equal(t, "authenticated", body["stage"])
	assert.Equal(t, "a@b.co", body["email"])
}

func TestContinue_Validation(t *testing.T) {
	c, _ := newTestClient(t, 10)

	rec := c.do(http.MethodPost, "/api/auth/continue", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/auth/continue", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContinue_DeliveryFailure(t *testing.T) {
	c, notifier := newTestClient(t, 10)
	notifier.fail = true

	rec := c.do(http.MethodPost, "/api/auth/continue", `{"email":"a@b.co","password":"hunter2"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestVerify_WrongCode(t *testing.T) {
	c, notifier := newTestClient(t, 10)

	rec := c.do(http.MethodPost, "/api/auth/continue", `{"email":"a@b.co","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	wrong := "000000"
	if notifier.lastCode == wrong {
		wrong = "000001"
	}
	rec = c.do(http.MethodPost, "/api/auth/verify", `{"code":"`+wrong+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/api/auth/verify", `{"code":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerify_NothingPending(t *testing.T) {
	c, _ := newTestClient(t, 10)
	rec := c.do(http.MethodPost, "/api/auth/verify", `{"code":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResend_LockedRightAfterFirstCode(t *testing.T) {
	c, _ := newTestClient(t, 10)

	rec := c.do(http.MethodPost, "/api/auth/continue", `{"email":"a@b.co","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/api/auth/resend", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestEditFlow(t *testing.T) {
	c, notifier := newTestClient(t, 10)
	c.register(notifier, "a@b.co", "hunter2")

	rec := c.do(http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	doc := body["config"].(map[string]any)
	assert.Equal(t, float64(30), doc["refresh_interval_seconds"])
	before := body["fingerprint"].(string)

	rec = c.do(http.MethodPut, "/api/config", `{"refresh_interval_seconds":60,"layout":{"columns_per_row":99}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.Equal(t, float64(1), body["upload_count"])
	assert.NotEqual(t, before, body["fingerprint"])

	rec = c.do(http.MethodGet, "/api/config", "")
	doc = decodeBody(t, rec)["config"].(map[string]any)
	assert.Equal(t, float64(60), doc["refresh_interval_seconds"])
	layout := doc["layout"].(map[string]any)
	assert.Equal(t, float64(5), layout["columns_per_row"]) // clamped
}

func TestEdit_RequiresLogin(t *testing.T) {
	c, _ := newTestClient(t, 10)
	rec := c.do(http.MethodPut, "/api/config", `{"refresh_interval_seconds":60}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEdit_QuotaExhausted(t *testing.T) {
	c, notifier := newTestClient(t, 1)
	c.register(notifier, "a@b.co", "hunter2")

	rec := c.do(http.MethodPut, "/api/config", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPut, "/api/config", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "daily upload limit")
}

func TestImportApplyExport(t *testing.T) {
	c, notifier := newTestClient(t, 10)
	c.register(notifier, "a@b.co", "hunter2")

	rec := c.do(http.MethodPost, "/api/config/import", `{"clock":{"position":"bottom-left"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["staged"])

	rec = c.do(http.MethodPost, "/api/config/apply", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["applied"])
	clock := body["config"].(map[string]any)["clock"].(map[string]any)
	assert.Equal(t, "bottom-left", clock["position"])

	// nothing staged anymore
	rec = c.do(http.MethodPost, "/api/config/apply", "")
	assert.Equal(t, false, decodeBody(t, rec)["applied"])

	rec = c.do(http.MethodGet, "/api/config/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "config.json")
	assert.Contains(t, rec.Body.String(), `"position": "bottom-left"`)
}

func TestAppliedImportCanBeSaved(t *testing.T) {
	c, notifier := newTestClient(t, 10)
	c.register(notifier, "a@b.co", "hunter2")

	rec := c.do(http.MethodPost, "/api/config/import", `{"layout":{"view":"list"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodPost, "/api/config/apply", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// saving right after an apply must not be mistaken for a conflict
	rec = c.do(http.MethodPut, "/api/config", `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, rec)["upload_count"])

	// the overridden document survives a reload from the store
	rec = c.do(http.MethodPost, "/api/config/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	layout := decodeBody(t, rec)["config"].(map[string]any)["layout"].(map[string]any)
	assert.Equal(t, "list", layout["view"])
}

func TestImport_MalformedUpload(t *testing.T) {
	c, notifier := newTestClient(t, 10)
	c.register(notifier, "a@b.co", "hunter2")

	rec := c.do(http.MethodPost, "/api/config/import", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected")
}

func TestLogoutForgetsSession(t *testing.T) {
	c, notifier := newTestClient(t, 10)
	c.register(notifier, "a@b.co", "hunter2")

	rec := c.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/session", "")
	assert.Equal(t, "anonymous", decodeBody(t, rec)["stage"])
}

func TestConflictBetweenTwoSessions(t *testing.T) {
	logger := logging.NewDiscardLogger()
	repo := accounts.NewMemoryRepository()
	notifier := &stubNotifier{}
	configs := services.NewConfigService(repo, 10, logger)
	authSvc := services.NewAuthService(repo, notifier, configs, logger)
	srv := NewServer(authSvc, configs, []byte("test-secret"), time.Hour, logger)
	handler := srv.Handler()

	first := &client{t: t, handler: handler}
	first.register(notifier, "a@b.co", "hunter2")

	second := &client{t: t, handler: handler}
	rec := second.do(http.MethodPost, "/api/auth/continue", `{"email":"a@b.co","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "logged_in", decodeBody(t, rec)["status"])

	rec = second.do(http.MethodPut, "/api/config", `{"layout":{"view":"list"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// the first session still holds the pre-save fingerprint
	rec = first.do(http.MethodPut, "/api/config", `{"refresh_interval_seconds":60}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// reloading adopts the other writer's state and unblocks saving
	rec = first.do(http.MethodPost, "/api/config/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = first.do(http.MethodPut, "/api/config", `{"refresh_interval_seconds":60}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
