package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"atelier-go/internal/config"
	"atelier-go/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
app:
  name: atelier-test
  mode: test
jwt:
  secret: test-secret-key
  expire_hours: 1
`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "atelier-config")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0644); err != nil {
		panic(err)
	}
	if _, err := config.Load(path); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func newRequestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func TestExtractToken(t *testing.T) {
	t.Run("Bearer 头", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Request.Header.Set("Authorization", "Bearer abc123")
		assert.Equal(t, "abc123", extractToken(c))
	})

	t.Run("bearer 小写", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Request.Header.Set("Authorization", "bearer abc123")
		assert.Equal(t, "abc123", extractToken(c))
	})

	t.Run("非 Bearer 方案拒绝", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Request.Header.Set("Authorization", "Basic abc123")
		assert.Empty(t, extractToken(c))
	})

	t.Run("WebSocket 握手走查询参数", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Request = httptest.NewRequest("GET", "/?token=query-token", nil)
		assert.Equal(t, "query-token", extractToken(c))
	})

	t.Run("头优先于查询参数", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Request = httptest.NewRequest("GET", "/?token=query-token", nil)
		c.Request.Header.Set("Authorization", "Bearer header-token")
		assert.Equal(t, "header-token", extractToken(c))
	})
}

func TestAuthRequired(t *testing.T) {
	t.Run("有效令牌注入用户 ID", func(t *testing.T) {
		token, err := utils.GenerateToken(42)
		require.NoError(t, err)

		c, _ := newRequestContext(t)
		c.Request.Header.Set("Authorization", "Bearer "+token)

		AuthRequired()(c)

		assert.False(t, c.IsAborted())
		userID, ok := GetCurrentUserID(c)
		require.True(t, ok)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("缺少令牌返回 401", func(t *testing.T) {
		c, w := newRequestContext(t)

		AuthRequired()(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("无效令牌返回 401", func(t *testing.T) {
		c, w := newRequestContext(t)
		c.Request.Header.Set("Authorization", "Bearer not-a-token")

		AuthRequired()(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	t.Run("匿名放行", func(t *testing.T) {
		c, _ := newRequestContext(t)

		OptionalAuth()(c)

		assert.False(t, c.IsAborted())
		_, ok := GetCurrentUserID(c)
		assert.False(t, ok)
	})

	t.Run("有效令牌注入用户 ID", func(t *testing.T) {
		token, err := utils.GenerateToken(7)
		require.NoError(t, err)

		c, _ := newRequestContext(t)
		c.Request.Header.Set("Authorization", "Bearer "+token)

		OptionalAuth()(c)

		userID, ok := GetCurrentUserID(c)
		require.True(t, ok)
		assert.Equal(t, int64(7), userID)
	})

	t.Run("无效令牌按匿名处理", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Request.Header.Set("Authorization", "Bearer garbage")

		OptionalAuth()(c)

		assert.False(t, c.IsAborted())
		_, ok := GetCurrentUserID(c)
		assert.False(t, ok)
	})
}

func TestAdminRequired(t *testing.T) {
	fetcher := func(role string, err error) UserRoleFetcher {
		return func(userID int64) (string, error) { return role, err }
	}

	t.Run("管理员放行", func(t *testing.T) {
		c, _ := newRequestContext(t)
		c.Set(ContextKeyUserID, int64(1))

		AdminRequired(fetcher("admin", nil))(c)

		assert.False(t, c.IsAborted())
	})

	t.Run("普通用户返回 403", func(t *testing.T) {
		c, w := newRequestContext(t)
		c.Set(ContextKeyUserID, int64(1))

		AdminRequired(fetcher("user", nil))(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("未认证返回 401", func(t *testing.T) {
		c, w := newRequestContext(t)

		AdminRequired(fetcher("admin", nil))(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("角色查询失败返回 401", func(t *testing.T) {
		c, w := newRequestContext(t)
		c.Set(ContextKeyUserID, int64(1))

		AdminRequired(fetcher("", errors.New("record not found")))(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
