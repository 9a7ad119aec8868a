package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedRouter(hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/readings", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"success": true, "hits": *hits})
	})
	r.GET("/missing", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})
	r.POST("/readings", func(c *gin.Context) {
		*hits++
		c.Status(http.StatusCreated)
	})
	return r
}

func perform(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCacheReplaysSecondGet(t *testing.T) {
	hits := 0
	r := newCachedRouter(&hits)

	first := perform(r, http.MethodGet, "/readings?limit=5")
	second := perform(r, http.MethodGet, "/readings?limit=5")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, hits)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))
}

func TestCacheKeysOnFullURI(t *testing.T) {
	hits := 0
	r := newCachedRouter(&hits)

	perform(r, http.MethodGet, "/readings?limit=5")
	perform(r, http.MethodGet, "/readings?limit=10")

	assert.Equal(t, 2, hits)
}

func TestCacheSkipsNon2xxAndNonGet(t *testing.T) {
	hits := 0
	r := newCachedRouter(&hits)

	perform(r, http.MethodGet, "/missing")
	perform(r, http.MethodGet, "/missing")
	assert.Equal(t, 2, hits)

	perform(r, http.MethodPost, "/readings")
	perform(r, http.MethodPost, "/readings")
	assert.Equal(t, 4, hits)
}
