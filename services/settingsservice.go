package services

import (
	"context"
	"net/http"
	"slices"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

func GetSettings(ctx context.Context, fb *firestore.Client, projectID string) (model.Settings, error) {
	snap, err := SettingsRef(fb, projectID).Get(ctx)
	if err != nil {
		if apperr.IsNotFound(err) {
			return model.Settings{}, apperr.NotFound("Project settings not found")
		}
		return model.Settings{}, err
	}
	settings := model.DefaultSettings()
	if err := snap.DataTo(&settings); err != nil {
		return settings, err
	}
	if len(settings.StoryPointSizes) != len(model.Sizes) {
		settings.StoryPointSizes = append([]int(nil), model.DefaultStoryPointSizes...)
	}
	return settings, nil
}

func UpdateScrumSettings(ctx context.Context, fb *firestore.Client, projectID string, req dto.ScrumSettingsRequest) error {
	updates := []firestore.Update{{Path: "sprintDuration", Value: req.SprintDuration}}
	if req.MaximumSprintStoryPoints > 0 {
		updates = append(updates, firestore.Update{Path: "maximumSprintStoryPoints", Value: req.MaximumSprintStoryPoints})
	}
	_, err := SettingsRef(fb, projectID).Update(ctx, updates)
	return err
}

// UpdateStoryPointSizes replaces the XS..XXL point table. Values must not
// decrease from one size to the next.
func UpdateStoryPointSizes(ctx context.Context, fb *firestore.Client, projectID string, sizes []int) error {
	if len(sizes) != len(model.Sizes) {
		return apperr.BadRequest("Expected %d sizes", len(model.Sizes))
	}
	if !slices.IsSorted(sizes) {
		return apperr.BadRequest("Story points must increase with size")
	}
	_, err := SettingsRef(fb, projectID).Update(ctx, []firestore.Update{{Path: "storyPointSizes", Value: sizes}})
	return err
}

func UpdateAIContextText(ctx context.Context, fb *firestore.Client, projectID, text string) error {
	_, err := SettingsRef(fb, projectID).Update(ctx, []firestore.Update{{Path: "aiContext.text", Value: text}})
	return err
}

// AddAIContextLinks fetches every new link and stores its text.
func AddAIContextLinks(ctx context.Context, fb *firestore.Client, client *http.Client, projectID string, links []string) ([]model.AIContextLink, error) {
	settings, err := GetSettings(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	var fresh []string
	for _, l := range links {
		known := slices.ContainsFunc(settings.AIContext.Links, func(x model.AIContextLink) bool { return x.Link == l })
		if !known && !slices.Contains(fresh, l) {
			fresh = append(fresh, l)
		}
	}
	if len(fresh) == 0 {
		return settings.AIContext.Links, nil
	}
	fetched := FetchLinks(ctx, client, fresh)
	values := make([]any, len(fetched))
	for i, l := range fetched {
		values[i] = l
	}
	if _, err := SettingsRef(fb, projectID).Update(ctx, []firestore.Update{
		{Path: "aiContext.links", Value: firestore.ArrayUnion(values...)},
	}); err != nil {
		return nil, err
	}
	return append(settings.AIContext.Links, fetched...), nil
}

func RemoveAIContextLink(ctx context.Context, fb *firestore.Client, projectID, link string) error {
	settings, err := GetSettings(ctx, fb, projectID)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(settings.AIContext.Links), func(l model.AIContextLink) bool { return l.Link == link })
	_, err = SettingsRef(fb, projectID).Update(ctx, []firestore.Update{{Path: "aiContext.links", Value: kept}})
	return err
}

// contextFiles converts uploaded documents to stored text.
func contextFiles(files []dto.FileInput) ([]model.AIContextFile, error) {
	out := make([]model.AIContextFile, 0, len(files))
	for _, f := range files {
		text, err := ExtractText(f.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, model.AIContextFile{Name: f.Name, Type: f.Type, Content: text, Size: f.Size})
	}
	return out, nil
}

func AddAIContextFiles(ctx context.Context, fb *firestore.Client, projectID string, files []dto.FileInput) ([]model.AIContextFile, error) {
	converted, err := contextFiles(files)
	if err != nil {
		return nil, err
	}
	settings, err := GetSettings(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	merged := slices.Clone(settings.AIContext.Files)
	for _, f := range converted {
		i := slices.IndexFunc(merged, func(x model.AIContextFile) bool { return x.Name == f.Name })
		if i >= 0 {
			merged[i] = f
			continue
		}
		merged = append(merged, f)
	}
	_, err = SettingsRef(fb, projectID).Update(ctx, []firestore.Update{{Path: "aiContext.files", Value: merged}})
	return merged, err
}

func RemoveAIContextFile(ctx context.Context, fb *firestore.Client, projectID, name string) error {
	settings, err := GetSettings(ctx, fb, projectID)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(settings.AIContext.Files), func(f model.AIContextFile) bool { return f.Name == name })
	_, err = SettingsRef(fb, projectID).Update(ctx, []firestore.Update{{Path: "aiContext.files", Value: kept}})
	return err
}
