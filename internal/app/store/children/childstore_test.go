package childstore

import (
	"testing"
	"time"

	"github.com/dalemusser/smilebloom/internal/domain/models"
	"github.com/dalemusser/smilebloom/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "  Nong Mai  ",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      "female",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID.IsZero() {
		t.Error("Create() did not assign ID")
	}
	if created.FullName != "Nong Mai" {
		t.Errorf("Create() FullName = %q, want trimmed %q", created.FullName, "Nong Mai")
	}
	if created.Gender != models.GenderFemale {
		t.Errorf("Create() Gender = %q, want %q", created.Gender, models.GenderFemale)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("Create() did not set timestamps")
	}
}

func TestStore_GetOwned_Scoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	created, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Nong Mai",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      models.GenderFemale,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Owner can read
	found, err := store.GetOwned(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("GetOwned() ID = %v, want %v", found.ID, created.ID)
	}

	// Another account sees nothing
	_, err = store.GetOwned(ctx, stranger, created.ID)
	if err != mongo.ErrNoDocuments {
		t.Errorf("GetOwned() cross-account error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_ListByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	// Empty list for a fresh account
	children, err := store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(children) != 0 {
		t.Errorf("ListByOwner() initial = %d, want 0", len(children))
	}

	first, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "First Child",
		Birthday:    mustDate(t, "2022-01-01"),
		Gender:      models.GenderMale,
	})
	if err != nil {
		t.Fatalf("Create() first error = %v", err)
	}
	second, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Second Child",
		Birthday:    mustDate(t, "2024-06-15"),
		Gender:      models.GenderFemale,
	})
	if err != nil {
		t.Fatalf("Create() second error = %v", err)
	}
	// A child belonging to a different account must not leak in
	_, err = store.Create(ctx, models.Child{
		OwnerUserID: other,
		FullName:    "Other Child",
		Birthday:    mustDate(t, "2023-05-05"),
		Gender:      models.GenderMale,
	})
	if err != nil {
		t.Fatalf("Create() other error = %v", err)
	}

	children, err = store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("ListByOwner() = %d children, want 2", len(children))
	}

	// Newest first
	if children[0].ID != second.ID {
		t.Errorf("ListByOwner() first = %v, want newest %v", children[0].ID, second.ID)
	}
	if children[1].ID != first.ID {
		t.Errorf("ListByOwner() second = %v, want %v", children[1].ID, first.ID)
	}
}

func TestStore_UpdateOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Original Name",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      models.GenderMale,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newName := "Updated Name"
	if err := store.UpdateOwned(ctx, owner, created.ID, UpdateInput{FullName: &newName}); err != nil {
		t.Fatalf("UpdateOwned() error = %v", err)
	}

	updated, err := store.GetOwned(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if updated.FullName != newName {
		t.Errorf("UpdateOwned() FullName = %q, want %q", updated.FullName, newName)
	}
	// Untouched fields survive
	if updated.Gender != models.GenderMale {
		t.Errorf("UpdateOwned() changed Gender unexpectedly")
	}
	if !updated.Birthday.Equal(mustDate(t, "2024-03-10")) {
		t.Errorf("UpdateOwned() changed Birthday unexpectedly")
	}
}

func TestStore_UpdateOwned_ClearEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	email := "kid@example.com"
	created, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Email Child",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      models.GenderFemale,
		Email:       &email,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	empty := ""
	if err := store.UpdateOwned(ctx, owner, created.ID, UpdateInput{Email: &empty}); err != nil {
		t.Fatalf("UpdateOwned() error = %v", err)
	}

	updated, err := store.GetOwned(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if updated.Email != nil {
		t.Errorf("UpdateOwned() Email = %v, want cleared", updated.Email)
	}
}

func TestStore_UpdateOwned_WrongOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Guarded Child",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      models.GenderMale,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newName := "Hijacked"
	err = store.UpdateOwned(ctx, stranger, created.ID, UpdateInput{FullName: &newName})
	if err != mongo.ErrNoDocuments {
		t.Errorf("UpdateOwned() cross-account error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_DeleteOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Delete Child",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      models.GenderMale,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Another account cannot delete
	err = store.DeleteOwned(ctx, stranger, created.ID)
	if err != mongo.ErrNoDocuments {
		t.Errorf("DeleteOwned() cross-account error = %v, want %v", err, mongo.ErrNoDocuments)
	}

	if err := store.DeleteOwned(ctx, owner, created.ID); err != nil {
		t.Fatalf("DeleteOwned() error = %v", err)
	}

	_, err = store.GetOwned(ctx, owner, created.ID)
	if err != mongo.ErrNoDocuments {
		t.Errorf("GetOwned() after delete error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_CountByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	count, err := store.CountByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("CountByOwner() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountByOwner() initial = %d, want 0", count)
	}

	_, err = store.Create(ctx, models.Child{
		OwnerUserID: owner,
		FullName:    "Counted Child",
		Birthday:    mustDate(t, "2024-03-10"),
		Gender:      models.GenderFemale,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, err = store.CountByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("CountByOwner() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByOwner() = %d, want 1", count)
	}
}
