package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/newspulse/newspulse/backend/go-services/internal/news"
	"github.com/newspulse/newspulse/backend/go-services/pkg/logger"
	"github.com/newspulse/newspulse/backend/go-services/pkg/metrics"
)

// NewsHandler serves the trending feed and article search.
type NewsHandler struct {
	svc *news.Service
}

func NewNewsHandler(svc *news.Service) *NewsHandler {
	return &NewsHandler{svc: svc}
}

// Register routes under /news
func (h *NewsHandler) Register(rg *gin.RouterGroup) {
	n := rg.Group("/news")
	n.GET("/trending", h.Trending)
	n.GET("/search", h.Search)
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// Trending handles GET /news/trending
func (h *NewsHandler) Trending(c *gin.Context) {
	limit, ok := intQuery(c, "limit", news.DefaultTrendingLimit)
	if !ok {
		return
	}
	hours, ok := intQuery(c, "hours", news.DefaultTrendingWindowHours)
	if !ok {
		return
	}
	opts := news.TrendingOptions{
		Limit:             limit,
		WindowHours:       hours,
		PreferredCategory: c.Query("preferred_category"),
		PreferredRegion:   c.Query("preferred_region"),
	}
	articles, err := h.svc.GetTrending(c.Request.Context(), opts)
	if err != nil {
		logger.Errorf("trending query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trending articles"})
		return
	}
	metrics.TrendingRequests.Inc()
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

// Search handles GET /news/search
func (h *NewsHandler) Search(c *gin.Context) {
	limit, ok := intQuery(c, "limit", news.DefaultSearchLimit)
	if !ok {
		return
	}
	q := news.SearchQuery{
		Keywords:  c.Query("keywords"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Source:    c.Query("source"),
		Limit:     limit,
	}
	articles, err := h.svc.SearchArticles(c.Request.Context(), q)
	if err != nil {
		logger.Errorf("article search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search articles"})
		return
	}
	kind := "filter"
	if q.Keywords != "" {
		kind = "text"
	}
	metrics.SearchRequests.WithLabelValues(kind).Inc()
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}
