package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"budget/config"
	"budget/middleware"
	"budget/models"
	"budget/repository"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testUserHeader 测试中以请求头模拟当前登录用户
const testUserHeader = "X-Test-User"

func setUserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := strconv.ParseUint(c.GetHeader(testUserHeader), 10, 64); err == nil {
			c.Set("userID", uint(id))
		}
		c.Next()
	}
}

type testAPI struct {
	store  *repository.MemoryStore
	router *gin.Engine
	cfg    *config.Config

	users      *service.UserService
	households *service.HouseholdService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
	middleware.InitJWT(cfg)

	st := repository.NewMemoryStore()
	ta := &testAPI{
		store:      st,
		cfg:        cfg,
		users:      service.NewUserService(st),
		households: service.NewHouseholdService(st, nil),
	}

	auth := NewAuthHandler(cfg, ta.users)
	households := NewHouseholdHandler(ta.households)
	categories := NewCategoryHandler(service.NewCategoryService(st))
	accounts := NewAccountHandler(service.NewAccountService(st))
	transactions := NewTransactionHandler(service.NewTransactionService(st))
	exports := NewExportHandler(service.NewExportService(st))

	r := gin.New()
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)

	g := r.Group("", setUserIDMiddleware())
	g.GET("/auth/profile", auth.GetProfile)
	g.POST("/households", households.Create)
	g.GET("/households", households.List)
	g.GET("/households/invitations", households.Invitations)
	g.GET("/households/:id", households.Get)
	g.PUT("/households/:id", households.Update)
	g.DELETE("/households/:id", households.Delete)
	g.POST("/households/:id/invite", households.Invite)
	g.POST("/households/:id/join", households.Join)
	g.POST("/households/:id/leave", households.Leave)
	g.GET("/households/:id/members", households.Members)
	g.GET("/households/:id/categories", categories.List)
	g.POST("/households/:id/categories", categories.Create)
	g.PUT("/categories/:id", categories.Update)
	g.DELETE("/categories/:id", categories.Delete)
	g.GET("/households/:id/accounts", accounts.List)
	g.POST("/households/:id/accounts", accounts.Create)
	g.GET("/accounts/:id", accounts.Get)
	g.PUT("/accounts/:id", accounts.Update)
	g.DELETE("/accounts/:id", accounts.Delete)
	g.POST("/accounts/:id/recalculate", accounts.Recalculate)
	g.GET("/accounts/:id/transactions", transactions.List)
	g.POST("/accounts/:id/transactions", transactions.Create)
	g.GET("/accounts/:id/export/csv", exports.ExportCSV)
	g.GET("/accounts/:id/export/excel", exports.ExportExcel)
	g.GET("/transactions/:id", transactions.Get)
	g.PUT("/transactions/:id", transactions.Update)
	g.DELETE("/transactions/:id", transactions.Delete)
	g.POST("/transactions/:id/void", transactions.Void)
	ta.router = r
	return ta
}

func (ta *testAPI) do(method, path string, userID uint, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(userID), 10))
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := ta.users.Register(context.Background(), email, "password123", "")
	require.NoError(t, err)
	return u
}

// decode 解析响应信封，data 写入 out（可为 nil）
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var env struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env.Response
}
