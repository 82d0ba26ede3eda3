package store_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devboards/newswire/internal/article"
	"github.com/devboards/newswire/internal/store"
)

type GatewaySuite struct {
	suite.Suite

	ctx    context.Context
	client *mongo.Client
	db     *mongo.Database

	gateway *store.Gateway
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupSuite() {
	s.ctx = context.Background()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()
	client, err := store.Connect(ctx, uri)
	if err != nil {
		s.T().Skipf("mongodb not reachable at %s: %v", uri, err)
	}
	s.client = client
	s.db = client.Database("test_newswire")
}

func (s *GatewaySuite) TearDownSuite() {
	if s.client != nil {
		_ = s.db.Drop(s.ctx)
		_ = s.client.Disconnect(s.ctx)
	}
}

func (s *GatewaySuite) SetupTest() {
	_ = s.db.Drop(s.ctx)
	gateway, err := store.NewGateway(s.db)
	s.Require().NoError(err, "failed to create gateway")
	s.gateway = gateway
}

func enrichedFixture(title, sourceURL string) *article.Enriched {
	var translations []article.Translation
	for _, lang := range article.RequiredLanguages {
		translations = append(translations, article.Translation{
			Language: lang, Title: title, Summary: "s", Content: "c",
		})
	}
	return &article.Enriched{
		Canonical: article.Canonical{
			Title:       title,
			SourceURL:   sourceURL,
			SourceName:  "Test Source",
			ContentRaw:  "body",
			Author:      "Unknown",
			PublishedAt: time.Now(),
			GUID:        sourceURL,
			FetchedAt:   time.Now(),
		},
		IsRelevant:   true,
		Summary:      "summary",
		Category:     "General",
		Tags:         []string{},
		Language:     "en",
		Sentiment:    "neutral",
		Translations: translations,
		Slug:         article.Slugify(title),
		IsPublished:  true,
	}
}

func (s *GatewaySuite) TestSaveAndDuplicateCheck() {
	a := enrichedFixture("First Article", "https://example.com/first")

	dup, err := s.gateway.IsDuplicate(s.ctx, a.SourceURL)
	s.Require().NoError(err)
	s.False(dup, "fresh URL must not be a duplicate")

	saved, err := s.gateway.Save(s.ctx, a)
	s.Require().NoError(err)
	s.True(saved)

	dup, err = s.gateway.IsDuplicate(s.ctx, a.SourceURL)
	s.Require().NoError(err)
	s.True(dup, "stored URL must be a duplicate")
}

func (s *GatewaySuite) TestSecondSaveIsNonFatalDuplicate() {
	first := enrichedFixture("Same Article", "https://example.com/same")
	second := enrichedFixture("Same Article Again", "https://example.com/same")
	second.Slug = "same-article-again"

	saved, err := s.gateway.Save(s.ctx, first)
	s.Require().NoError(err)
	s.True(saved)

	saved, err = s.gateway.Save(s.ctx, second)
	s.Require().NoError(err, "duplicate key must not surface as an error")
	s.False(saved, "second save of the same source_url must report not-saved")

	count, err := s.gateway.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count, "exactly one record per source_url")
}

func (s *GatewaySuite) TestSlugConflictIsNonFatal() {
	first := enrichedFixture("Clashing Title", "https://example.com/a")
	second := enrichedFixture("Clashing Title", "https://example.com/b")

	saved, err := s.gateway.Save(s.ctx, first)
	s.Require().NoError(err)
	s.True(saved)

	saved, err = s.gateway.Save(s.ctx, second)
	s.Require().NoError(err)
	s.False(saved, "slug collision must report not-saved")
}

func (s *GatewaySuite) TestMissingSlugGetsTimestampedFallback() {
	a := enrichedFixture("Needs A Slug", "https://example.com/slugless")
	a.Slug = ""

	saved, err := s.gateway.Save(s.ctx, a)
	s.Require().NoError(err)
	s.True(saved)

	s.True(strings.HasPrefix(a.Slug, "needs-a-slug-"), "slug %q lacks the title prefix", a.Slug)
	s.Greater(len(a.Slug), len("needs-a-slug-"), "slug %q lacks the timestamp suffix", a.Slug)
}

func (s *GatewaySuite) TestNilTranslationsStoredAsEmptyArray() {
	a := enrichedFixture("No Translations", "https://example.com/none")
	a.Translations = nil

	saved, err := s.gateway.Save(s.ctx, a)
	s.Require().NoError(err)
	s.True(saved)

	var raw bson.M
	err = s.db.Collection("news").FindOne(s.ctx, bson.M{"source_url": a.SourceURL}).Decode(&raw)
	s.Require().NoError(err)
	translations, ok := raw["translations"].(bson.A)
	s.Require().True(ok, "translations field must exist as an array")
	s.Empty(translations)
}

func (s *GatewaySuite) TestEmptySourceURLExemptFromUniqueness() {
	first := enrichedFixture("Malformed One", "")
	second := enrichedFixture("Malformed Two", "")

	saved, err := s.gateway.Save(s.ctx, first)
	s.Require().NoError(err)
	s.True(saved)

	saved, err = s.gateway.Save(s.ctx, second)
	s.Require().NoError(err)
	s.True(saved, "empty source_url must be exempt from the sparse unique index")
}

func (s *GatewaySuite) TestLatestOrdersNewestFirst() {
	for i := 0; i < 3; i++ {
		a := enrichedFixture(fmt.Sprintf("Ordered %d", i), fmt.Sprintf("https://example.com/%d", i))
		saved, err := s.gateway.Save(s.ctx, a)
		s.Require().NoError(err)
		s.Require().True(saved)
	}

	latest, err := s.gateway.Latest(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(latest, 2)
	s.Equal("Ordered 2", latest[0].Title)
	s.Equal("Ordered 1", latest[1].Title)
}
