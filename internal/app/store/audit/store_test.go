package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/smilebloom/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Note: SetupTestDB already creates indexes via indexes.EnsureAll
	// This test verifies EnsureIndexes doesn't error on existing indexes
	err := store.EnsureIndexes(ctx)
	if err != nil && !isIndexConflict(err) {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
}

// isIndexConflict checks if error is due to index name conflict
func isIndexConflict(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "already exists with a different name")
}

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	event := Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestAgent",
		Success:   true,
	}

	err := store.Log(ctx, event)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	// Verify event was logged
	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].EventType != EventLoginSuccess {
		t.Errorf("EventType = %q, want %q", events[0].EventType, EventLoginSuccess)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("Log() should set CreatedAt when zero")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	events := []Event{
		{Category: CategoryAuth, EventType: EventLoginSuccess, UserID: &userID, Success: true},
		{Category: CategoryAuth, EventType: EventLoginFailed, UserID: &userID, Success: false},
		{Category: CategoryChild, EventType: EventChildCreated, UserID: &userID, Success: true},
		{Category: CategoryAuth, EventType: EventLoginSuccess, UserID: &otherID, Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	// By user
	got, err := store.Query(ctx, QueryFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Query(user) = %d events, want 3", len(got))
	}

	// By category
	got, err = store.Query(ctx, QueryFilter{UserID: &userID, Category: CategoryChild})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Query(category) = %d events, want 1", len(got))
	}

	// By event type
	got, err = store.Query(ctx, QueryFilter{EventType: EventLoginSuccess})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Query(event_type) = %d events, want 2", len(got))
	}
}

func TestStore_CountByFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if err := store.Log(ctx, Event{
			Category:  CategoryTeeth,
			EventType: EventToothEventCreated,
			UserID:    &userID,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	count, err := store.CountByFilter(ctx, QueryFilter{Category: CategoryTeeth})
	if err != nil {
		t.Fatalf("CountByFilter() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountByFilter() = %d, want 3", count)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Log(ctx, Event{
		Category:  CategoryAuth,
		EventType: EventLoginFailed,
		UserID:    &userID,
		Success:   false,
	}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := store.Log(ctx, Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
	}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	failed, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins() error = %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("GetFailedLogins() = %d, want 1", len(failed))
	}
	if failed[0].EventType != EventLoginFailed {
		t.Errorf("EventType = %q, want %q", failed[0].EventType, EventLoginFailed)
	}
}

func TestStore_DeleteOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	now := time.Now().UTC()

	if err := store.Log(ctx, Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		UserID:    &userID,
		CreatedAt: now.AddDate(0, 0, -100),
		Success:   true,
	}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := store.Log(ctx, Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		UserID:    &userID,
		CreatedAt: now,
		Success:   true,
	}); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	deleted, err := store.DeleteOlderThan(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteOlderThan() = %d, want 1", deleted)
	}

	remaining, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("remaining = %d, want 1", len(remaining))
	}
}
