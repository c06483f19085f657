package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"tenor/model"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
)

func projectContextHeader(project model.Project, settings model.Settings) string {
	var sb strings.Builder
	sb.WriteString("The following is some context for a software project that is being developed. ")
	sb.WriteString("Your job is to help the user organize their project in different ways. ")
	sb.WriteString("Read the following context and then answer the required question.\n\n")
	sb.WriteString("###### BEGINNING OF PROJECT CONTEXT\n\n")
	fmt.Fprintf(&sb, "# PROJECT NAME\n%s\n\n", project.Name)
	fmt.Fprintf(&sb, "# PROJECT DESCRIPTION\n%s\n\n", project.Description)
	sb.WriteString(settings.AIContext.String())
	sb.WriteString("\n###### END OF PROJECT CONTEXT\n")
	return sb.String()
}

// ProjectContextHeader renders the project description and AI context that
// prefixes every generation prompt.
func ProjectContextHeader(ctx context.Context, fb *firestore.Client, projectID string) (string, error) {
	var project model.Project
	var settings model.Settings
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		project, err = GetProject(gctx, fb, projectID)
		return err
	})
	g.Go(func() (err error) {
		settings, err = GetSettings(gctx, fb, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return projectContextHeader(project, settings), nil
}

func tagContext(title string, tags []model.Tag) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", strings.ToUpper(title))
	for _, t := range tags {
		if t.Deleted {
			continue
		}
		fmt.Fprintf(&sb, "- id: %s\n- name: %s\n\n", t.ID, t.Name)
	}
	return sb.String()
}

func tagList(tags map[string]model.Tag) []model.Tag {
	out := make([]model.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RenderContext turns free-form client context into prompt sections, one
// per key in alphabetical order.
func RenderContext(related map[string]any) string {
	keys := make([]string, 0, len(related))
	for k := range related {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "# %s\n\n", strings.ToUpper(k))
		switch v := related[k].(type) {
		case string:
			sb.WriteString(v)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				fmt.Fprint(&sb, v)
			} else {
				sb.Write(data)
			}
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func userPrompt(kind, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return ""
	}
	return fmt.Sprintf("Consider that the user wants the %s for the following: %s", kind, prompt)
}
