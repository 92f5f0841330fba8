package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecordID(t *testing.T) {
	id := GenerateRecordID("p")
	assert.True(t, strings.HasPrefix(id, "p"))
	assert.Len(t, id, 33, "prefix plus a dashless uuid")
	assert.NotContains(t, id, "-")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRecordID("i")
		assert.False(t, seen[id], "id %s generated twice", id)
		seen[id] = true
	}
}

func TestGinErrorHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		fn     func(c *gin.Context, message string)
		status int
	}{
		{"BadRequest", GinBadRequest, http.StatusBadRequest},
		{"Unauthorized", GinUnauthorized, http.StatusUnauthorized},
		{"Forbidden", GinForbidden, http.StatusForbidden},
		{"NotFound", GinNotFound, http.StatusNotFound},
		{"InternalServerError", GinInternalServerError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			tc.fn(c, fmt.Sprintf("%s happened", tc.name))

			assert.Equal(t, tc.status, w.Code)
			assert.True(t, c.IsAborted())

			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tc.name)
		})
	}
}
