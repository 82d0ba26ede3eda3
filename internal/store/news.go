package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devboards/newswire/internal/article"
)

const collectionName = "news"

// Gateway persists enriched articles in the news collection. Uniqueness on
// source_url (sparse) and slug is enforced by indexes, which makes the
// store the final race-resolution authority across concurrent runs.
type Gateway struct {
	col *mongo.Collection
}

// NewGateway wires the news collection and ensures its indexes.
func NewGateway(db *mongo.Database) (*Gateway, error) {
	g := &Gateway{col: db.Collection(collectionName)}
	if err := g.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensuring indexes: %w", err)
	}
	return g, nil
}

func (g *Gateway) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source_url", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "published_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	}
	_, err := g.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// IsDuplicate checks by source URL whether an article is already stored.
// It runs before enrichment so duplicates never cost model tokens; the
// lookup rides the source_url index.
func (g *Gateway) IsDuplicate(ctx context.Context, sourceURL string) (bool, error) {
	n, err := g.col.CountDocuments(ctx, bson.M{"source_url": sourceURL}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("duplicate check for %s: %w", sourceURL, err)
	}
	return n > 0, nil
}

// Save inserts one enriched article, deriving a slug when none was
// assigned and guaranteeing a non-nil translations field. A duplicate key
// on source_url or slug is an expected outcome of concurrent or repeated
// runs: it is logged and reported as (false, nil), never as an error.
func (g *Gateway) Save(ctx context.Context, a *article.Enriched) (bool, error) {
	if a.Slug == "" {
		a.Slug = fmt.Sprintf("%s-%d", article.Slugify(a.Title), time.Now().Unix())
	}
	if a.Translations == nil {
		a.Translations = []article.Translation{}
	}

	if _, err := g.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Printf("Duplicate key for article: %s (%s)", a.Title, a.SourceURL)
			return false, nil
		}
		return false, fmt.Errorf("saving article %q: %w", a.Title, err)
	}

	log.Printf("Saved article: %s", a.Title)
	return true, nil
}

// Count returns the total number of stored articles.
func (g *Gateway) Count(ctx context.Context) (int64, error) {
	return g.col.CountDocuments(ctx, bson.M{})
}

// CountFetchedSince returns how many articles were ingested at or after
// the given instant.
func (g *Gateway) CountFetchedSince(ctx context.Context, since time.Time) (int64, error) {
	return g.col.CountDocuments(ctx, bson.M{"fetched_at": bson.M{"$gte": since}})
}

// Latest returns the most recently inserted articles, newest first.
func (g *Gateway) Latest(ctx context.Context, limit int64) ([]article.Enriched, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(limit)
	cur, err := g.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var articles []article.Enriched
	if err := cur.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
