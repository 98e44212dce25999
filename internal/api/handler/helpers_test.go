package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"默认值", "", 1, 20},
		{"正常分页", "page=3&page_size=50", 3, 50},
		{"页码小于 1 归为 1", "page=0", 1, 20},
		{"负页码归为 1", "page=-2", 1, 20},
		{"页大小超上限回落默认", "page_size=500", 1, 20},
		{"页大小为 0 回落默认", "page_size=0", 1, 20},
		{"非数字回落默认", "page=abc&page_size=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newQueryContext(t, tt.query)
			page, pageSize := parsePagination(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	id, err := parseIDParam(c)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	c.Params = gin.Params{{Key: "id", Value: "not-a-number"}}
	_, err = parseIDParam(c)
	assert.Error(t, err)
}
