package services

import (
	"context"
	"os"
	"testing"

	"tenor/apperr"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// emulator returns a client for the local Firestore emulator, skipping the
// test when none is running.
func emulator(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	fb, err := firestore.NewClient(context.Background(), "tenor-test")
	if err != nil {
		t.Fatalf("firestore.NewClient() error = %v", err)
	}
	t.Cleanup(func() { fb.Close() })
	return fb
}

func TestTagLifecycle(t *testing.T) {
	fb := emulator(t)
	ctx := context.Background()
	projectID := "p-" + uuid.New().String()

	bug, err := FindOrCreateTag(ctx, fb, projectID, BacklogTags, "Bug")
	if err != nil {
		t.Fatalf("FindOrCreateTag() error = %v", err)
	}
	again, err := FindOrCreateTag(ctx, fb, projectID, BacklogTags, "bug")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != bug.ID {
		t.Errorf("case-insensitive lookup created a second tag: %s vs %s", again.ID, bug.ID)
	}

	if _, err := CreateTag(ctx, fb, projectID, BacklogTags, bug); err != nil {
		t.Fatal(err)
	}
	tags, err := ListTags(ctx, fb, projectID, BacklogTags)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("len(tags) = %d, want 2", len(tags))
	}

	if err := DeleteTag(ctx, fb, projectID, BacklogTags, bug.ID); err != nil {
		t.Fatal(err)
	}
	tags, err = ListTags(ctx, fb, projectID, BacklogTags)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].ID == bug.ID {
		t.Errorf("deleted tag still listed: %+v", tags)
	}

	// Deleted tags stay readable for items that still reference them.
	if got, err := GetTag(ctx, fb, projectID, BacklogTags, bug.ID); err != nil || !got.Deleted {
		t.Errorf("GetTag(deleted) = %+v, %v", got, err)
	}
	if _, err := GetTag(ctx, fb, projectID, BacklogTags, "missing"); !apperr.IsNotFound(err) {
		t.Errorf("GetTag(missing) error = %v", err)
	}
}
