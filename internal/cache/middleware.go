package cache

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/logging"
)

// IndexPrefix is the key prefix of the cached home feed.
const IndexPrefix = "index_page"

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyLogWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Key builds the cache key of a request: the prefix, then who is looking,
// the negotiated format and the full request URI.
func Key(prefix string, c *gin.Context) string {
	viewer := "anon"
	if id := c.GetInt("user_id"); id != 0 {
		viewer = strconv.Itoa(id)
	}
	format := "html"
	if c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON {
		format = "json"
	}
	return prefix + ":" + viewer + ":" + format + ":" + c.Request.URL.RequestURI()
}

// Page caches successful GET responses of the wrapped handlers for ttl.
// Writes made in the meantime are not visible until the entry expires or
// the store is cleared.
func Page(store Store, prefix string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := Key(prefix, c)
		entry, err := store.Get(ctx, key)
		if err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, ErrMiss) {
			logging.Log.WithError(err).WithField("key", key).Warn("page cache read failed")
		}

		blw := &bodyLogWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = blw
		c.Header("X-Cache", "MISS")
		c.Next()

		if c.Writer.Status() != http.StatusOK || c.IsAborted() {
			return
		}
		entry = &Entry{
			Status:      http.StatusOK,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        blw.body.Bytes(),
		}
		if err := store.Set(ctx, key, entry, ttl); err != nil {
			logging.Log.WithError(err).WithField("key", key).Warn("page cache write failed")
		}
	}
}
