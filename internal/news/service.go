package news

import (
	"context"
	"fmt"
	"time"

	"github.com/newspulse/newspulse/backend/go-services/internal/models"
)

// DefaultSearchLimit caps search results when the caller doesn't ask for a
// specific limit.
const DefaultSearchLimit = 20

// Service encapsulates the trending and search read paths.
type Service struct {
	repo ArticleRepository
	now  func() time.Time
}

func NewService(r ArticleRepository) *Service {
	return &Service{repo: r, now: time.Now}
}

// GetTrending returns the trending feed: articles saved within the window,
// ranked by descending trending score and truncated to opts.Limit. Malformed
// timestamps on individual records degrade to "now" instead of failing the
// whole ranking; store errors are propagated.
func (s *Service) GetTrending(ctx context.Context, opts TrendingOptions) ([]models.Article, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultTrendingLimit
	}
	if opts.WindowHours <= 0 {
		opts.WindowHours = DefaultTrendingWindowHours
	}
	now := s.now().UTC()
	since := now.Add(-time.Duration(opts.WindowHours) * time.Hour)
	articles, err := s.repo.FindSavedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load trending candidates: %w", err)
	}
	return RankTrending(articles, opts, now), nil
}

// SearchArticles runs the filtered article search. A zero limit returns an
// empty list; a negative limit is treated the same way. Every returned record
// carries explicit like/dislike/share counters (zero when the stored document
// lacks them).
func (s *Service) SearchArticles(ctx context.Context, q SearchQuery) ([]models.Article, error) {
	if q.Limit <= 0 {
		return []models.Article{}, nil
	}
	articles, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	if articles == nil {
		articles = []models.Article{}
	}
	return articles, nil
}
