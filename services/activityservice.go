package services

import (
	"context"
	"time"

	"tenor/model"

	"cloud.google.com/go/firestore"
)

const RecentActivityCount = 5

// RecentActivities returns the latest project activity joined with the
// scrum label and name of each item.
func RecentActivities(ctx context.Context, fb *firestore.Client, projectID string) ([]model.ActivityDetail, error) {
	activities, err := listDocs[model.Activity](ctx, ActivityRef(fb, projectID).OrderBy("date", firestore.Desc).Limit(RecentActivityCount))
	if err != nil {
		return nil, err
	}
	return activityDetails(ctx, fb, projectID, activities)
}

type itemSummary struct {
	ID      string `firestore:"-"`
	ScrumID int    `firestore:"scrumId"`
	Number  int    `firestore:"number"`
	Name    string `firestore:"name"`
}

func (s *itemSummary) SetID(id string) { s.ID = id }

func activityDetails(ctx context.Context, fb *firestore.Client, projectID string, activities []model.Activity) ([]model.ActivityDetail, error) {
	out := make([]model.ActivityDetail, len(activities))
	var refs []*firestore.DocumentRef
	var index []int
	for i, a := range activities {
		out[i] = model.ActivityDetail{Activity: a}
		if a.Type.Collection() == "" {
			continue
		}
		refs = append(refs, ItemsRef(fb, projectID, a.Type).Doc(a.ItemID))
		index = append(index, i)
	}
	if len(refs) == 0 {
		return out, nil
	}

	snaps, err := fb.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	for j, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		item, err := decode[itemSummary](snap)
		if err != nil {
			return nil, err
		}
		d := &out[index[j]]
		d.Name = item.Name
		n := item.ScrumID
		if d.Type == model.ItemSprint {
			n = item.Number
		}
		d.ScrumLabel = model.FormatScrumID(d.Type, n)
	}
	return out, nil
}

// UserActivities lists everything a user did in a project since the given
// time, newest first.
func UserActivities(ctx context.Context, fb *firestore.Client, projectID, userID string, since time.Time) ([]model.Activity, error) {
	return listDocs[model.Activity](ctx, ActivityRef(fb, projectID).
		Where("userId", "==", userID).
		Where("date", ">=", since).
		OrderBy("date", firestore.Desc))
}
