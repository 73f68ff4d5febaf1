package news

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newspulse/newspulse/backend/go-services/internal/models"
)

// MemoryArticleRepository is an in-memory ArticleRepository used for unit
// tests and as a fallback when no MongoDB is configured. It mirrors the
// Mongo repository's query semantics: inclusive publishedAt bounds, exact
// channel match, keyword relevance ordering (naive term frequency standing in
// for the text index score) and publishedAt-descending ordering otherwise.
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles []models.Article
}

func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{}
}

// Add stores articles in insertion order.
func (m *MemoryArticleRepository) Add(articles ...models.Article) {
	m.mu.Lock()
	m.articles = append(m.articles, articles...)
	m.mu.Unlock()
}

func (m *MemoryArticleRepository) FindSavedSince(ctx context.Context, since time.Time) ([]models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Article
	for _, a := range m.articles {
		if !a.SavedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

// relevance is a stand-in for the Mongo textScore: occurrences of each query
// term across the indexed text fields.
func relevance(a models.Article, keywords string) int {
	text := strings.ToLower(a.Title + " " + a.Description + " " + a.Content)
	score := 0
	for _, term := range strings.Fields(strings.ToLower(keywords)) {
		score += strings.Count(text, term)
	}
	return score
}

func (m *MemoryArticleRepository) Search(ctx context.Context, q SearchQuery) ([]models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Article
	var scores []int
	for _, a := range m.articles {
		if q.Source != "" && a.Channel != q.Source {
			continue
		}
		if q.StartDate != "" && a.PublishedAt < q.StartDate {
			continue
		}
		if q.EndDate != "" && a.PublishedAt > q.EndDate {
			continue
		}
		if q.Keywords != "" {
			s := relevance(a, q.Keywords)
			if s == 0 {
				continue
			}
			scores = append(scores, s)
		}
		matched = append(matched, a)
	}

	if q.Keywords != "" {
		idx := make([]int, len(matched))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool { return scores[idx[i]] > scores[idx[j]] })
		ordered := make([]models.Article, len(matched))
		for i, v := range idx {
			ordered[i] = matched[v]
		}
		matched = ordered
	} else {
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].PublishedAt > matched[j].PublishedAt })
	}

	// Limit <= 0 means uncapped, matching Mongo's SetLimit(0); the zero-limit
	// "return nothing" rule is enforced by the service.
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}
