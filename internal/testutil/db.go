// Package testutil holds the shared test harness: a real-MongoDB database
// per test and HTTP request builders.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/smilebloom/internal/app/system/indexes"
)

// DefaultTestDBURI is used unless SMILEBLOOM_TEST_MONGO_URI is set.
const DefaultTestDBURI = "mongodb://localhost:27017"

// testDBPrefix starts every per-test database name.
const testDBPrefix = "smilebloom_test"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// getClient connects once and shares the client across all tests; the pool
// is sized for parallel packages.
func getClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		uri := os.Getenv("SMILEBLOOM_TEST_MONGO_URI")
		if uri == "" {
			uri = DefaultTestDBURI
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(uri).
			SetMaxPoolSize(200).
			SetMinPoolSize(10).
			SetMaxConnIdleTime(30 * time.Second).
			SetConnectTimeout(10 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		client, clientErr = mongo.Connect(ctx, opts)
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// SetupTestDB returns a database unique to the calling test, with the
// production indexes in place. The database is dropped before use and again
// in t.Cleanup. Tests skip when no MongoDB is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := getClient()
	if err != nil {
		t.Skipf("MongoDB not available for tests: %v", err)
	}

	db := client.Database(fmt.Sprintf("%s_%s", testDBPrefix, dbNameSuffix(t.Name())))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database on cleanup: %v", err)
		}
	})

	return db
}

// dbNameSuffix folds a test name into something MongoDB accepts as part of
// a database name. Names are capped at 63 characters overall, so the suffix
// is truncated to leave room for the prefix.
func dbNameSuffix(name string) string {
	suffix := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)

	const maxLen = 47
	if len(suffix) > maxLen {
		suffix = suffix[:maxLen]
	}
	return suffix
}

// TestContext returns a context generous enough for any single test
// operation against the local database.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
