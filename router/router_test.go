package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"budget/config"
	"budget/middleware"
	"budget/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: "router-test-secret", ExpireTime: time.Hour},
	}
	middleware.InitJWT(cfg)
	return SetupRouter(cfg, repository.NewMemoryStore(), nil)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, r *gin.Engine, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func login(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, email)
	code, _ := call(t, r, "POST", "/api/v1/auth/register", "", body)
	require.Equal(t, 200, code)
	code, env := call(t, r, "POST", "/api/v1/auth/login", "", body)
	require.Equal(t, 200, code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	code, _ := call(t, r, "GET", "/health", "", "")
	assert.Equal(t, 200, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/api/v1/households", "/api/v1/accounts/1", "/api/v1/auth/profile"} {
		code, env := call(t, r, "GET", path, "", "")
		assert.Equal(t, 401, code, path)
		assert.Equal(t, 401, env.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest("OPTIONS", "/api/v1/households", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHouseholdLedgerFlow(t *testing.T) {
	r := newTestRouter(t)
	owner := login(t, r, "owner@example.com")
	member := login(t, r, "member@example.com")

	code, env := call(t, r, "POST", "/api/v1/households", owner, `{"name":"张家"}`)
	require.Equal(t, 200, code)
	var h struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &h))

	code, _ = call(t, r, "POST", fmt.Sprintf("/api/v1/households/%d/invite", h.ID), owner, `{"email":"member@example.com"}`)
	require.Equal(t, 200, code)
	code, _ = call(t, r, "POST", fmt.Sprintf("/api/v1/households/%d/join", h.ID), member, "")
	require.Equal(t, 200, code)

	code, env = call(t, r, "POST", fmt.Sprintf("/api/v1/households/%d/accounts", h.ID), owner, `{"name":"现金"}`)
	require.Equal(t, 200, code)
	var a struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &a))

	code, env = call(t, r, "POST", fmt.Sprintf("/api/v1/households/%d/categories", h.ID), owner, `{"name":"日用"}`)
	require.Equal(t, 200, code)
	var cat struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cat))

	code, _ = call(t, r, "POST", fmt.Sprintf("/api/v1/accounts/%d/transactions", a.ID), member,
		fmt.Sprintf(`{"title":"纸巾","amount":"-9.90","category_id":%d}`, cat.ID))
	require.Equal(t, 200, code)

	code, env = call(t, r, "GET", fmt.Sprintf("/api/v1/accounts/%d", a.ID), member, "")
	require.Equal(t, 200, code)
	var account struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &account))
	assert.Equal(t, "-9.9", account.Balance)
}
