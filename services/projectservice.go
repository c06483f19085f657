package services

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"tenor/apperr"
	"tenor/dto"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TopProjectsTTL is how long the top projects cache is served.
const TopProjectsTTL = 24 * time.Hour

const DefaultTopProjects = 3

func GetProject(ctx context.Context, fb *firestore.Client, projectID string) (model.Project, error) {
	p, err := getDoc[model.Project](ctx, ProjectRef(fb, projectID), "Project not found")
	if err == nil && p.Deleted {
		return p, apperr.NotFound("Project not found")
	}
	return p, err
}

// ListProjects returns the live projects the user belongs to.
func ListProjects(ctx context.Context, fb *firestore.Client, userID string) ([]model.Project, error) {
	user, err := GetUserDoc(ctx, fb, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return []model.Project{}, nil
		}
		return nil, err
	}
	if len(user.ProjectIDs) == 0 {
		return []model.Project{}, nil
	}

	refs := make([]*firestore.DocumentRef, len(user.ProjectIDs))
	for i, id := range user.ProjectIDs {
		refs[i] = ProjectRef(fb, id)
	}
	snaps, err := fb.GetAll(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := []model.Project{}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		p, err := decode[model.Project](snap)
		if err != nil {
			return nil, err
		}
		if !p.Deleted {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// projectMembers puts the creator first as owner and drops repeated users,
// keeping the first occurrence.
func projectMembers(creatorID string, users []dto.MemberInput) []dto.MemberInput {
	seen := map[string]bool{creatorID: true}
	out := []dto.MemberInput{{UserID: creatorID, RoleID: model.OwnerRoleID}}
	for _, u := range users {
		if u.UserID == "" || seen[u.UserID] {
			continue
		}
		seen[u.UserID] = true
		out = append(out, u)
	}
	return out
}

// ProjectServices groups what project creation touches besides Firestore.
type ProjectServices struct {
	FB    *firestore.Client
	Store *FileStore
	HTTP  *http.Client
}

// CreateProject writes the project, its settings, default roles and tags,
// and links every member to it.
func (s *ProjectServices) CreateProject(ctx context.Context, userID string, req dto.CreateProjectRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", apperr.BadRequest("Project name is required")
	}
	files, err := contextFiles(req.Context.Files)
	if err != nil {
		return "", err
	}
	projectID := uuid.New().String()

	logo := model.DefaultProjectLogo
	switch {
	case IsDataURL(req.Logo):
		logo, err = s.Store.UploadDataURL(ctx, "projects/"+projectID+"/logo", req.Logo, model.LogoSizeLimit)
		if err != nil {
			return "", err
		}
	case req.Logo != "":
		logo = req.Logo
	}

	settings := model.DefaultSettings()
	settings.AIContext.Text = req.Context.Text
	settings.AIContext.Files = files
	if len(req.Context.Links) > 0 {
		settings.AIContext.Links = FetchLinks(ctx, s.HTTP, req.Context.Links)
	}

	fb := s.FB
	now := time.Now()
	b := newBulk(ctx, fb)
	b.set(ProjectRef(fb, projectID), model.Project{
		Name:          name,
		Description:   req.Description,
		Logo:          logo,
		ScrumCounters: map[string]int64{},
		CreatedAt:     now,
	})
	b.set(SettingsRef(fb, projectID), settings)

	roles := seedRoles(b, fb, projectID)
	for _, m := range projectMembers(userID, req.Users) {
		b.set(MembersRef(fb, projectID).Doc(m.UserID), model.ProjectMember{
			RoleID: mapRoleID(m.RoleID, roles),
			Active: true,
		})
		b.set(UsersRef(fb).Doc(m.UserID), map[string]any{
			"projectIds": firestore.ArrayUnion(projectID),
		}, firestore.MergeAll)
	}

	seedTags(b, fb, projectID)
	b.set(ActivityRef(fb, projectID).Doc(uuid.New().String()), model.Activity{
		ItemID: projectID,
		UserID: userID,
		Type:   model.ItemProject,
		Date:   now,
		Action: model.ActionCreate,
	})
	if err := b.end(); err != nil {
		return "", err
	}
	return projectID, nil
}

func seedTags(b *bulk, fb *firestore.Client, projectID string) {
	for _, t := range model.DefaultPriorityTags() {
		b.set(TagsRef(fb, projectID, PriorityTypes).Doc(uuid.New().String()), t)
	}
	for _, t := range model.DefaultRequirementTypeTags() {
		b.set(TagsRef(fb, projectID, RequirementTypes).Doc(uuid.New().String()), t)
	}
	for _, t := range model.DefaultStatusTags() {
		b.set(TagsRef(fb, projectID, StatusTypes).Doc(uuid.New().String()), t)
	}
}

// ModifyProject updates the general settings. A new logo replaces the
// uploaded one, whose files are removed.
func (s *ProjectServices) ModifyProject(ctx context.Context, userID, projectID string, req dto.ModifyProjectRequest) (model.Project, error) {
	project, err := GetProject(ctx, s.FB, projectID)
	if err != nil {
		return project, err
	}
	updates := []firestore.Update{
		{Path: "name", Value: strings.TrimSpace(req.Name)},
		{Path: "description", Value: req.Description},
	}
	if req.Logo != "" && req.Logo != project.Logo {
		logo := req.Logo
		if IsDataURL(req.Logo) {
			logo, err = s.Store.ReplaceDataURL(ctx, "projects/"+projectID+"/logo", req.Logo, model.LogoSizeLimit)
			if err != nil {
				return project, err
			}
		}
		updates = append(updates, firestore.Update{Path: "logo", Value: logo})
		project.Logo = logo
	}
	if _, err := ProjectRef(s.FB, projectID).Update(ctx, updates); err != nil {
		return project, err
	}
	logActivity(ctx, s.FB, projectID, userID, projectID, model.ItemProject, model.ActionUpdate)
	project.Name, project.Description = strings.TrimSpace(req.Name), req.Description
	return project, nil
}

func DeleteProject(ctx context.Context, fb *firestore.Client, userID, projectID string) error {
	if _, err := GetProject(ctx, fb, projectID); err != nil {
		return err
	}
	if _, err := ProjectRef(fb, projectID).Update(ctx, []firestore.Update{{Path: "deleted", Value: true}}); err != nil {
		return err
	}
	logActivity(ctx, fb, projectID, userID, projectID, model.ItemProject, model.ActionDelete)
	return nil
}

func sprintStatus(project model.Project, sprint *model.Sprint, tasks []model.Task, statuses []model.StatusTag) model.ProjectStatus {
	out := model.ProjectStatus{
		ProjectID:   project.ID,
		Name:        project.Name,
		Logo:        project.Logo,
		AssigneeIDs: []string{},
	}
	if sprint == nil {
		return out
	}
	out.SprintNumber = sprint.Number
	end := sprint.EndDate
	out.SprintEndDate = &end

	items := sprintItemSet(*sprint)
	done := doneStatusIDs(statuses)
	seen := map[string]bool{}
	for _, t := range tasks {
		if !items[t.ItemID] {
			continue
		}
		out.TaskCount++
		if done[t.StatusID] {
			out.CompletedCount++
		}
		if t.AssigneeID != "" && !seen[t.AssigneeID] {
			seen[t.AssigneeID] = true
			out.AssigneeIDs = append(out.AssigneeIDs, t.AssigneeID)
		}
	}
	return out
}

// GetProjectStatus counts the tasks of the current sprint.
func GetProjectStatus(ctx context.Context, fb *firestore.Client, projectID string) (model.ProjectStatus, error) {
	var (
		project  model.Project
		sprint   *model.Sprint
		tasks    []model.Task
		statuses []model.StatusTag
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		project, err = GetProject(gctx, fb, projectID)
		return err
	})
	g.Go(func() (err error) {
		sprint, err = CurrentSprint(gctx, fb, projectID)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = listTasks(gctx, fb, projectID)
		return err
	})
	g.Go(func() (err error) {
		statuses, err = ListStatusTypes(gctx, fb, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ProjectStatus{}, err
	}
	return sprintStatus(project, sprint, tasks, statuses), nil
}

// sortTopProjects orders projects with a running sprint by how soon it
// ends. Projects without a sprint go last.
func sortTopProjects(statuses []model.ProjectStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		a, b := statuses[i].SprintEndDate, statuses[j].SprintEndDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

func cacheFresh(fetched, now time.Time, ttl time.Duration) bool {
	return !fetched.IsZero() && now.Sub(fetched) < ttl
}

// TopProjects returns the user's projects closest to a sprint deadline,
// computed at most once a day unless recompute is set.
func TopProjects(ctx context.Context, fb *firestore.Client, userID string, count int, recompute bool) ([]model.ProjectStatus, error) {
	if count <= 0 {
		count = DefaultTopProjects
	}
	ref := TopProjectsCacheRef(fb, userID)
	if !recompute {
		snap, err := ref.Get(ctx)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		if err == nil {
			var cache model.TopProjectsCache
			if err := snap.DataTo(&cache); err != nil {
				return nil, err
			}
			if cacheFresh(cache.FetchDate, time.Now(), TopProjectsTTL) {
				return firstN(cache.Projects, count), nil
			}
		}
	}

	projects, err := ListProjects(ctx, fb, userID)
	if err != nil {
		return nil, err
	}
	var mu sync.Mutex
	statuses := make([]model.ProjectStatus, 0, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range projects {
		g.Go(func() error {
			st, err := GetProjectStatus(gctx, fb, p.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			statuses = append(statuses, st)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortTopProjects(statuses)

	if _, err := ref.Set(ctx, model.TopProjectsCache{Projects: statuses, FetchDate: time.Now()}); err != nil {
		return nil, err
	}
	return firstN(statuses, count), nil
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
