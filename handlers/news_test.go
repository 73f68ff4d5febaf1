package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/backend/go-services/internal/models"
	"github.com/newspulse/newspulse/backend/go-services/internal/news"
)

func newsRouter(repo news.ArticleRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewNewsHandler(news.NewService(repo)).Register(r.Group("/"))
	return r
}

type newsResponse struct {
	Articles []models.Article `json:"articles"`
	Count    int              `json:"count"`
}

func TestTrendingEndpoint(t *testing.T) {
	repo := news.NewMemoryArticleRepository()
	now := time.Now().UTC()
	repo.Add(
		models.Article{ID: "hot", Title: "hot story", SavedAt: now.Add(-time.Hour), Views: 500},
		models.Article{ID: "cool", Title: "cool story", SavedAt: now.Add(-time.Hour), Views: 5},
		models.Article{ID: "stale", Title: "stale story", SavedAt: now.Add(-80 * time.Hour), Views: 900},
	)
	r := newsRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/news/trending?limit=5", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp newsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count, "article outside the window excluded")
	require.Equal(t, "hot", resp.Articles[0].ID)
	require.NotZero(t, resp.Articles[0].TrendingScore)
}

func TestTrendingEndpointRejectsBadLimit(t *testing.T) {
	r := newsRouter(news.NewMemoryArticleRepository())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/news/trending?limit=abc", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	repo := news.NewMemoryArticleRepository()
	now := time.Now().UTC()
	repo.Add(
		models.Article{ID: "a", Title: "quantum leap", Channel: "bbc", PublishedAt: "2025-02-01T00:00:00Z", SavedAt: now},
		models.Article{ID: "b", Title: "other news", Channel: "cnn", PublishedAt: "2025-03-01T00:00:00Z", SavedAt: now},
	)
	r := newsRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/news/search?keywords=quantum", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp newsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "a", resp.Articles[0].ID)

	// no filters: everything, newest first
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/news/search", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "b", resp.Articles[0].ID)

	// limit=0 means an empty result, not an error
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/news/search?limit=0", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Count)
}
