package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newspulse/newspulse/backend/go-services/internal/storage"
	"github.com/newspulse/newspulse/backend/go-services/pkg/logger"
)

// maxProxiedImageSize caps the bytes fetched from a publisher (10 MiB).
const maxProxiedImageSize = 10 << 20

// ProxyHandler fetches article images on behalf of browser clients to work
// around publisher CORS policies. When an ImageCache is configured, fetched
// images are cached there.
type ProxyHandler struct {
	cache  *storage.ImageCache // optional
	client *http.Client
}

func NewProxyHandler(cache *storage.ImageCache) *ProxyHandler {
	return &ProxyHandler{cache: cache, client: &http.Client{Timeout: 10 * time.Second}}
}

func (h *ProxyHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/proxy/image", h.Image)
}

// Image handles GET /proxy/image?url=<encoded source url>
func (h *ProxyHandler) Image(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}
	src, err := url.QueryUnescape(raw)
	if err != nil {
		src = raw
	}
	if u, err := url.Parse(src); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported url"})
		return
	}

	if h.cache != nil {
		if obj, contentType, err := h.cache.Get(c.Request.Context(), src); err == nil {
			defer obj.Close()
			h.writeImageHeaders(c, contentType)
			io.Copy(c.Writer, obj)
			return
		}
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, src, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
		return
	}
	resp, err := h.client.Do(req)
	if err != nil {
		logger.Warnf("image proxy fetch failed (%s): %v", src, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch image"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream returned non-200"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxiedImageSize))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read image"})
		return
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if h.cache != nil {
		if err := h.cache.Put(c.Request.Context(), src, bytes.NewReader(body), int64(len(body)), contentType); err != nil {
			// cache failures don't break the proxy path
			logger.Debugf("image cache put failed (%s): %v", src, err)
		}
	}

	h.writeImageHeaders(c, contentType)
	c.Data(http.StatusOK, contentType, body)
}

func (h *ProxyHandler) writeImageHeaders(c *gin.Context, contentType string) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Content-Type", contentType)
}
