package news

import (
	"sort"
	"strings"
	"time"

	"github.com/newspulse/newspulse/backend/go-services/internal/models"
)

// Engagement weights and preference boosts for the trending score.
const (
	weightViews    = 0.3
	weightClicks   = 0.3
	weightShares   = 0.2
	weightLikes    = 0.1
	weightComments = 0.1

	categoryBoost = 1.2
	regionBoost   = 1.1
)

// Default parameters for the trending feed.
const (
	DefaultTrendingLimit       = 10
	DefaultTrendingWindowHours = 48
)

// TrendingOptions are the caller-supplied knobs for the trending feed.
// PreferredCategory and PreferredRegion are optional preference hints.
type TrendingOptions struct {
	Limit             int
	WindowHours       int
	PreferredCategory string
	PreferredRegion   string
}

// Upstream feeds produce a few timestamp shapes; anything unparseable falls
// back to saved_at (and ultimately to "now", which scores as zero age).
var publishedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parsePublishedAt(s string) (time.Time, bool) {
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// freshnessAnchor picks the timestamp age is measured from: publishedAt when
// present and parseable, else saved_at, else now.
func freshnessAnchor(a models.Article, now time.Time) time.Time {
	if a.PublishedAt != "" {
		if t, ok := parsePublishedAt(a.PublishedAt); ok {
			return t
		}
	}
	if !a.SavedAt.IsZero() {
		return a.SavedAt
	}
	return now
}

func engagementScore(a models.Article) float64 {
	return weightViews*float64(a.Views) +
		weightClicks*float64(a.Clicks) +
		weightShares*float64(a.ShareCount) +
		weightLikes*float64(a.LikeCount) +
		weightComments*float64(a.Comments)
}

// TrendingScore computes the non-persisted trending score for a single
// article at the given instant. It never fails on malformed records.
func TrendingScore(a models.Article, opts TrendingOptions, now time.Time) float64 {
	score := engagementScore(a)

	hoursSince := now.Sub(freshnessAnchor(a, now)).Hours()
	if hoursSince < 0 {
		// future-dated articles score as brand new, keeping the decay
		// denominator >= 1
		hoursSince = 0
	}
	score *= 1 / (1 + hoursSince)

	if opts.PreferredCategory != "" {
		haystack := strings.ToLower(a.Category + a.Title + a.Description)
		if strings.Contains(haystack, strings.ToLower(opts.PreferredCategory)) {
			score *= categoryBoost
		}
	}
	if opts.PreferredRegion != "" &&
		strings.Contains(strings.ToLower(a.UserCountry), strings.ToLower(opts.PreferredRegion)) {
		score *= regionBoost
	}
	return score
}

// RankTrending scores the candidate articles, orders them by descending
// trending score (stable on ties, preserving store order) and truncates to
// opts.Limit. Each returned article carries its computed score.
func RankTrending(articles []models.Article, opts TrendingOptions, now time.Time) []models.Article {
	ranked := make([]models.Article, len(articles))
	for i, a := range articles {
		a.TrendingScore = TrendingScore(a, opts, now)
		ranked[i] = a
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TrendingScore > ranked[j].TrendingScore
	})
	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked
}
