package models

import "time"

// Article is a stored news article with its engagement counters.
// PublishedAt comes from upstream feeds and may be absent or malformed, so it
// is kept as the raw string; SavedAt is set by the ingestion pipeline and is
// always present. TrendingScore is computed per request and never persisted.
type Article struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Content     string `bson:"content,omitempty" json:"content,omitempty"`
	Category    string `bson:"category,omitempty" json:"category,omitempty"`
	Channel     string `bson:"channel,omitempty" json:"channel,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
	ImageURL    string `bson:"urlToImage,omitempty" json:"urlToImage,omitempty"`
	UserCountry string `bson:"userCountry,omitempty" json:"userCountry,omitempty"`

	PublishedAt string    `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	SavedAt     time.Time `bson:"saved_at" json:"saved_at"`

	Views        int64 `bson:"views,omitempty" json:"views"`
	Clicks       int64 `bson:"clicks,omitempty" json:"clicks"`
	ShareCount   int64 `bson:"share_count,omitempty" json:"share_count"`
	LikeCount    int64 `bson:"like_count,omitempty" json:"like_count"`
	DislikeCount int64 `bson:"dislike_count,omitempty" json:"dislike_count"`
	Comments     int64 `bson:"comments,omitempty" json:"comments"`

	TrendingScore float64 `bson:"-" json:"trending_score,omitempty"`
}
