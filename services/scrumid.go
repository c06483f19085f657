package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// nextScrumID picks the id after the stored counter, or after the number of
// existing documents for projects created before counters existed.
func nextScrumID(counters map[string]int64, t model.ItemType, existing int) int64 {
	if n, ok := counters[string(t)]; ok {
		return n + 1
	}
	return int64(existing) + 1
}

// createNumbered writes a new document with the next per-project scrum id.
// The counter bump and the create share one transaction so concurrent
// creates never reuse a number.
func createNumbered(ctx context.Context, fb *firestore.Client, projectID string, t model.ItemType, build func(scrumID int) any) (string, int, error) {
	projectRef := ProjectRef(fb, projectID)
	itemsRef := ItemsRef(fb, projectID, t)
	id := uuid.New().String()
	var scrumID int64

	err := fb.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(projectRef)
		if err != nil {
			return err
		}
		var project model.Project
		if err := snap.DataTo(&project); err != nil {
			return err
		}

		existing := 0
		if _, ok := project.ScrumCounters[string(t)]; !ok {
			docs, err := tx.Documents(itemsRef).GetAll()
			if err != nil {
				return err
			}
			existing = len(docs)
		}
		scrumID = nextScrumID(project.ScrumCounters, t, existing)

		if err := tx.Create(itemsRef.Doc(id), build(int(scrumID))); err != nil {
			return err
		}
		return tx.Update(projectRef, []firestore.Update{
			{FieldPath: firestore.FieldPath{"scrumCounters", string(t)}, Value: scrumID},
		})
	})
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", t, err)
	}
	return id, int(scrumID), nil
}

// LogActivity appends an entry to the project activity feed. Failures are
// returned but callers treat them as non-fatal.
func LogActivity(ctx context.Context, fb *firestore.Client, projectID, userID, itemID string, t model.ItemType, action model.ActivityAction) error {
	_, err := ActivityRef(fb, projectID).Doc(uuid.New().String()).Set(ctx, model.Activity{
		ItemID: itemID,
		UserID: userID,
		Type:   t,
		Date:   time.Now(),
		Action: action,
	})
	return err
}

func logActivity(ctx context.Context, fb *firestore.Client, projectID, userID, itemID string, t model.ItemType, action model.ActivityAction) {
	if err := LogActivity(ctx, fb, projectID, userID, itemID, t, action); err != nil {
		slog.WarnContext(ctx, "activity log failed",
			"projectId", projectID,
			"itemId", itemID,
			"error", err,
		)
	}
}
