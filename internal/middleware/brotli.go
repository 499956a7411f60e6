package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// DefaultBrotliMinLength is the smallest body worth compressing.
const DefaultBrotliMinLength = 1024

// bufferedWriter holds the whole body so the encoding can be chosen once the
// handler is done.
type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (bw *bufferedWriter) Write(data []byte) (int, error) {
	return bw.buf.Write(data)
}

func (bw *bufferedWriter) WriteString(s string) (int, error) {
	return bw.buf.WriteString(s)
}

// Brotli compresses response bodies of at least minLength bytes for clients
// that accept "br". Report listings are the main beneficiary.
func Brotli(quality, minLength int) gin.HandlerFunc {
	if quality < brotli.BestSpeed || quality > brotli.BestCompression {
		quality = brotli.DefaultCompression
	}
	if minLength <= 0 {
		minLength = DefaultBrotliMinLength
	}

	return func(c *gin.Context) {
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		original := c.Writer
		bw := &bufferedWriter{ResponseWriter: original}
		c.Writer = bw

		c.Next()

		c.Writer = original
		body := bw.buf.Bytes()
		if len(body) < minLength {
			_, _ = original.Write(body)
			return
		}

		var compressed bytes.Buffer
		enc := brotli.NewWriterLevel(&compressed, quality)
		if _, err := enc.Write(body); err != nil {
			_ = c.Error(err)
			_, _ = original.Write(body)
			return
		}
		if err := enc.Close(); err != nil {
			_ = c.Error(err)
			_, _ = original.Write(body)
			return
		}

		h := original.Header()
		h.Set("Content-Encoding", "br")
		h.Set("Content-Length", strconv.Itoa(compressed.Len()))
		_, _ = original.Write(compressed.Bytes())
	}
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		// Strip any quality parameter ("br;q=1.0").
		name := strings.TrimSpace(strings.SplitN(enc, ";", 2)[0])
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
