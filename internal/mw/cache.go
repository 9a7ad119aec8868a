package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// cacheEntry holds everything needed to replay a response.
type cacheEntry struct {
	status      int
	contentType string
	body        []byte
}

// teeWriter mirrors the response body into a buffer while it streams out.
type teeWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache replays recent 2xx GET responses from memory. Entries are keyed on
// the full request URI, so distinct query windows never share a slot.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if hit, ok := store.Get(key); ok {
			entry := hit.(cacheEntry)
			c.Data(entry.status, entry.contentType, entry.body)
			c.Abort()
			return
		}

		tee := &teeWriter{ResponseWriter: c.Writer}
		c.Writer = tee
		c.Next()

		status := tee.Status()
		if status < 200 || status >= 300 {
			return
		}
		store.Set(key, cacheEntry{
			status:      status,
			contentType: tee.Header().Get("Content-Type"),
			body:        tee.buf.Bytes(),
		}, ttl)
	}
}
