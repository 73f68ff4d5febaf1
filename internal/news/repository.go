package news

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newspulse/newspulse/backend/go-services/internal/models"
)

// SearchQuery is the normalized set of optional article search filters.
// Empty fields impose no constraint; an empty Keywords string means "no
// keyword filter", not a text search for the empty string. Dates are ISO
// strings compared inclusively against publishedAt.
type SearchQuery struct {
	Keywords  string
	StartDate string
	EndDate   string
	Source    string
	Limit     int
}

// ArticleRepository defines persistence operations for articles
type ArticleRepository interface {
	FindSavedSince(ctx context.Context, since time.Time) ([]models.Article, error)
	Search(ctx context.Context, q SearchQuery) ([]models.Article, error)
}

// MongoArticleRepository implements ArticleRepository using MongoDB. Keyword
// search relies on a text index over the article's title/description/content
// fields (created by the ingestion pipeline).
type MongoArticleRepository struct {
	col *mongo.Collection
}

func NewMongoArticleRepository(col *mongo.Collection) *MongoArticleRepository {
	return &MongoArticleRepository{col: col}
}

func (r *MongoArticleRepository) FindSavedSince(ctx context.Context, since time.Time) ([]models.Article, error) {
	cur, err := r.col.Find(ctx, bson.M{"saved_at": bson.M{"$gte": since}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// buildSearchQuery translates a SearchQuery into a Mongo filter plus find
// options. With keywords the results are ordered by descending text
// relevance; otherwise by descending publishedAt.
func buildSearchQuery(q SearchQuery) (bson.M, *options.FindOptions) {
	filter := bson.M{}
	if q.Keywords != "" {
		filter["$text"] = bson.M{"$search": q.Keywords}
	}
	if q.StartDate != "" || q.EndDate != "" {
		dateRange := bson.M{}
		if q.StartDate != "" {
			dateRange["$gte"] = q.StartDate
		}
		if q.EndDate != "" {
			dateRange["$lte"] = q.EndDate
		}
		filter["publishedAt"] = dateRange
	}
	if q.Source != "" {
		filter["channel"] = q.Source
	}

	opts := options.Find().SetLimit(int64(q.Limit))
	if q.Keywords != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})
	} else {
		opts.SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	}
	return filter, opts
}

func (r *MongoArticleRepository) Search(ctx context.Context, q SearchQuery) ([]models.Article, error) {
	filter, opts := buildSearchQuery(q)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Article
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
