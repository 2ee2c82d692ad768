package cart

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}

func newRouter(svc *Service, p access.Principal) *gin.Engine {
	r := gin.New()
	r.Use(httpx.WithPrincipal(p))
	RegisterRoutes(r, svc)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartHandlers_RequireAuthentication(t *testing.T) {
	svc, _, _ := newTestService()
	r := newRouter(svc, access.Anonymous())

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w := do(r, method, "/cart/menu-items/", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)
	}
}

func TestCartHandlers_AddListClear(t *testing.T) {
	svc, _, m := newTestService()
	a := m.add("Bruschetta", "5.00")
	ana := access.Principal{UserID: uuid.NewString(), Username: "ana"}
	r := newRouter(svc, ana)

	w := do(r, http.MethodPost, "/cart/menu-items/", `{"menuitem":"`+a+`","quantity":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var l Line
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	assert.Equal(t, ana.UserID, l.UserID)
	assert.Equal(t, "10", l.Price.String())
	assert.Contains(t, w.Body.String(), `"unit_price":"5.00"`)
	assert.Contains(t, w.Body.String(), `"price":"10.00"`)

	w = do(r, http.MethodPost, "/cart/menu-items/", `{"menuitem":"`+a+`","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, "/cart/menu-items/", `{"menuitem":"`+uuid.NewString()+`","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/cart/menu-items/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var lines []Line
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	assert.Len(t, lines, 1)

	w = do(r, http.MethodDelete, "/cart/menu-items/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, http.MethodGet, "/cart/menu-items/", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}
