package services

import (
	"context"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

func ListEpics(ctx context.Context, fb *firestore.Client, projectID string) ([]model.Epic, error) {
	return listDocs[model.Epic](ctx, active(ItemsRef(fb, projectID, model.ItemEpic)).OrderBy("scrumId", firestore.Asc))
}

func GetEpic(ctx context.Context, fb *firestore.Client, projectID, id string) (model.Epic, error) {
	e, err := getDoc[model.Epic](ctx, ItemsRef(fb, projectID, model.ItemEpic).Doc(id), "Epic not found")
	if err == nil && e.Deleted {
		return e, apperr.NotFound("Epic not found")
	}
	return e, err
}

func CreateOrModifyEpic(ctx context.Context, fb *firestore.Client, projectID, userID, id string, req dto.EpicRequest) (model.Epic, error) {
	if id != "" {
		current, err := GetEpic(ctx, fb, projectID, id)
		if err != nil {
			return current, err
		}
		if _, err := ItemsRef(fb, projectID, model.ItemEpic).Doc(id).Update(ctx, []firestore.Update{
			{Path: "name", Value: req.Name},
			{Path: "description", Value: req.Description},
		}); err != nil {
			return current, err
		}
		logActivity(ctx, fb, projectID, userID, id, model.ItemEpic, model.ActionUpdate)
		current.Name, current.Description = req.Name, req.Description
		return current, nil
	}

	e := model.Epic{BasicInfo: model.BasicInfo{Name: req.Name, Description: req.Description, CreatedAt: time.Now()}}
	newID, scrumID, err := createNumbered(ctx, fb, projectID, model.ItemEpic, func(n int) any {
		e.ScrumID = n
		return e
	})
	if err != nil {
		return e, err
	}
	e.ID, e.ScrumID = newID, scrumID
	logActivity(ctx, fb, projectID, userID, newID, model.ItemEpic, model.ActionCreate)
	return e, nil
}

// DeleteEpic soft-deletes the epic and detaches its user stories.
func DeleteEpic(ctx context.Context, fb *firestore.Client, projectID, userID, id string) error {
	if _, err := GetEpic(ctx, fb, projectID, id); err != nil {
		return err
	}
	stories, err := listDocs[model.UserStory](ctx, ItemsRef(fb, projectID, model.ItemUserStory).Where("epicId", "==", id))
	if err != nil {
		return err
	}
	b := newBulk(ctx, fb)
	b.update(ItemsRef(fb, projectID, model.ItemEpic).Doc(id), []firestore.Update{{Path: "deleted", Value: true}})
	for _, s := range stories {
		b.update(ItemsRef(fb, projectID, model.ItemUserStory).Doc(s.ID), []firestore.Update{{Path: "epicId", Value: ""}})
	}
	if err := b.end(); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, id, model.ItemEpic, model.ActionDelete)
	return nil
}
