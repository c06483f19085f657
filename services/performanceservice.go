package services

import (
	"context"
	"math"
	"sort"
	"time"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
)

const (
	ProductivityTTL   = 24 * time.Hour
	AverageTimeWeeks  = 5
	activityMonthDays = 30
)

var errNoActiveSprint = apperr.NotFound("No performance data available, there is no active sprint.")

// productivitySince is the creation cutoff for Week and Month windows.
func productivitySince(w model.TimeWindow, now time.Time) time.Time {
	if w == model.WindowMonth {
		return now.AddDate(0, -1, 0)
	}
	return now.AddDate(0, 0, -7)
}

func isItemDone(item model.BacklogItem, tasks []model.Task, statuses []model.StatusTag, isIssue bool, done map[string]bool) bool {
	statusID := item.StatusID
	if statusID == "" {
		statusID = AutomaticStatus(tasks, statuses, isIssue)
	}
	return done[statusID]
}

func computeProductivity(ctx context.Context, fb *firestore.Client, projectID string, w model.TimeWindow, now time.Time) (model.Productivity, error) {
	p := model.Productivity{Time: w, FetchDate: now}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return p, err
	}

	var stories, issues []model.BacklogItem
	if w == model.WindowSprint {
		sprint := pickCurrentSprint(mapValues(l.sprints), now)
		if sprint == nil {
			return p, errNoActiveSprint
		}
		entries, err := listBacklogEntries(ctx, fb, projectID)
		if err != nil {
			return p, err
		}
		for _, e := range entries {
			if e.SprintID != sprint.ID {
				continue
			}
			switch e.Type {
			case model.ItemUserStory:
				stories = append(stories, e.BacklogItem)
			case model.ItemIssue:
				issues = append(issues, e.BacklogItem)
			}
		}
	} else {
		since := productivitySince(w, now)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			stories, err = listDocs[model.BacklogItem](gctx, active(ItemsRef(fb, projectID, model.ItemUserStory)).Where("createdAt", ">=", since))
			return err
		})
		g.Go(func() (err error) {
			issues, err = listDocs[model.BacklogItem](gctx, active(ItemsRef(fb, projectID, model.ItemIssue)).Where("createdAt", ">=", since))
			return err
		})
		if err := g.Wait(); err != nil {
			return p, err
		}
	}

	done := doneStatusIDs(l.statuses)
	p.UserStoriesTotal, p.IssuesTotal = len(stories), len(issues)
	for _, us := range stories {
		if isItemDone(us, l.tasks[us.ID], l.statuses, false, done) {
			p.UserStoriesCompleted++
		}
	}
	for _, is := range issues {
		if isItemDone(is, l.tasks[is.ID], l.statuses, true, done) {
			p.IssuesCompleted++
		}
	}
	return p, nil
}

func mapValues[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// replaceCached swaps the entry for p.Time in the cache.
func replaceCached(cached []model.Productivity, p model.Productivity) []model.Productivity {
	out := make([]model.Productivity, 0, len(cached)+1)
	for _, c := range cached {
		if c.Time != p.Time {
			out = append(out, c)
		}
	}
	return append(out, p)
}

// GetProductivity returns completed and total user stories and issues for
// the window. The cached value is reused for a day unless recompute is set.
func GetProductivity(ctx context.Context, fb *firestore.Client, projectID string, w model.TimeWindow, recompute bool) (model.Productivity, error) {
	if !w.Valid() {
		return model.Productivity{}, apperr.BadRequest("Invalid time window %q", w)
	}
	var cache model.ProductivityCache
	snap, err := ProductivityRef(fb, projectID).Get(ctx)
	switch {
	case err == nil:
		if err := snap.DataTo(&cache); err != nil {
			return model.Productivity{}, err
		}
	case !apperr.IsNotFound(err):
		return model.Productivity{}, err
	}

	now := time.Now()
	if !recompute {
		for _, c := range cache.Cached {
			if c.Time == w && cacheFresh(c.FetchDate, now, ProductivityTTL) {
				return c, nil
			}
		}
	}

	p, err := computeProductivity(ctx, fb, projectID, w, now)
	if err != nil {
		return p, err
	}
	cache.Cached = replaceCached(cache.Cached, p)
	if _, err := ProductivityRef(fb, projectID).Set(ctx, cache); err != nil {
		return p, err
	}
	return p, nil
}

// activityRange resolves a window to the activity dates it covers.
func activityRange(ctx context.Context, fb *firestore.Client, projectID string, w model.TimeWindow, now time.Time) (time.Time, time.Time, error) {
	switch w {
	case model.WindowWeek:
		return now.AddDate(0, 0, -7), now, nil
	case model.WindowMonth:
		return now.AddDate(0, 0, -activityMonthDays), now, nil
	case model.WindowSprint:
		sprint, err := CurrentSprint(ctx, fb, projectID)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if sprint == nil {
			return time.Time{}, time.Time{}, errNoActiveSprint
		}
		return sprint.StartDate, sprint.EndDate, nil
	}
	return time.Time{}, time.Time{}, apperr.BadRequest("Invalid time window %q", w)
}

func windowActivities(ctx context.Context, fb *firestore.Client, projectID, userID string, w model.TimeWindow) ([]model.Activity, error) {
	from, to, err := activityRange(ctx, fb, projectID, w, time.Now())
	if err != nil {
		return nil, err
	}
	activities, err := UserActivities(ctx, fb, projectID, userID, from)
	if err != nil {
		return nil, err
	}
	out := activities[:0]
	for _, a := range activities {
		if !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

// GroupActivitiesByDay counts activities per UTC day, newest day first.
func GroupActivitiesByDay(activities []model.Activity) []model.DayActivity {
	counts := map[string]int{}
	for _, a := range activities {
		counts[a.Date.UTC().Format(time.DateOnly)]++
	}
	out := make([]model.DayActivity, 0, len(counts))
	for day, n := range counts {
		out = append(out, model.DayActivity{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func UserContributions(ctx context.Context, fb *firestore.Client, projectID, userID string, w model.TimeWindow) ([]model.DayActivity, error) {
	activities, err := windowActivities(ctx, fb, projectID, userID, w)
	if err != nil {
		return nil, err
	}
	return GroupActivitiesByDay(activities), nil
}

func CountContributions(activities []model.Activity) model.ContributionOverview {
	var c model.ContributionOverview
	for _, a := range activities {
		switch a.Type {
		case model.ItemTask:
			c.Tasks++
		case model.ItemIssue:
			c.Issues++
		case model.ItemUserStory:
			c.UserStories++
		}
	}
	return c
}

func ContributionOverview(ctx context.Context, fb *firestore.Client, projectID, userID string, w model.TimeWindow) (model.ContributionOverview, error) {
	activities, err := windowActivities(ctx, fb, projectID, userID, w)
	if err != nil {
		return model.ContributionOverview{}, err
	}
	return CountContributions(activities), nil
}

// weekStart is the Sunday midnight (UTC) on or before t.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// AverageTimeByWeek averages, per week, the seconds between assignment and
// the move into a done status. The last weeks weeks are always present,
// empty ones as 0.
func AverageTimeByWeek(tasks []model.Task, done map[string]bool, now time.Time, weeks int) map[string]float64 {
	since := now.AddDate(0, 0, -7*weeks)
	total := map[string]time.Duration{}
	count := map[string]int{}
	for _, t := range tasks {
		if t.StatusChangeDate == nil || t.AssignedDate == nil || !done[t.StatusID] {
			continue
		}
		if t.StatusChangeDate.Before(since) {
			continue
		}
		taken := t.StatusChangeDate.Sub(*t.AssignedDate)
		if taken <= 0 {
			continue
		}
		key := weekStart(*t.StatusChangeDate).Format(time.DateOnly)
		total[key] += taken
		count[key]++
	}

	out := map[string]float64{}
	current := weekStart(now)
	for i := range weeks {
		key := current.AddDate(0, 0, -7*i).Format(time.DateOnly)
		avg := 0.0
		if count[key] > 0 {
			avg = total[key].Seconds() / float64(count[key])
		}
		out[key] = math.Round(avg*100) / 100
	}
	return out
}

func AverageTaskTime(ctx context.Context, fb *firestore.Client, projectID, userID string) (map[string]float64, error) {
	tasks, err := listDocs[model.Task](ctx, active(tasksRef(fb, projectID)).Where("assigneeId", "==", userID))
	if err != nil {
		return nil, err
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	return AverageTimeByWeek(tasks, doneStatusIDs(statuses), time.Now(), AverageTimeWeeks), nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// BurndownHistoryOf counts, for each elapsed sprint day, the tasks finished
// by the end of that day.
func BurndownHistoryOf(tasks []model.Task, done map[string]bool, start, end, now time.Time) []model.BurndownHistory {
	last := end
	if now.Before(end) {
		last = now
	}
	days := daysBetween(start, last) + 1
	var out []model.BurndownHistory
	for i := range days {
		cutoff := start.AddDate(0, 0, i+1)
		n := 0
		for _, t := range tasks {
			if done[t.StatusID] && t.FinishedDate != nil && t.FinishedDate.Before(cutoff) {
				n++
			}
		}
		out = append(out, model.BurndownHistory{Day: i, CompletedCount: n})
	}
	return out
}

// BurndownData returns the ideal line (series 0) and the actual remaining
// task count (series 1), sorted by sprint day.
func BurndownData(start, end time.Time, total, completed int, history []model.BurndownHistory, now time.Time) []model.BurndownPoint {
	if total == 0 || start.IsZero() || end.IsZero() {
		return []model.BurndownPoint{{SprintDay: 0, StoryPoints: 0, SeriesType: 0}}
	}
	duration := daysBetween(start, end) + 1
	var out []model.BurndownPoint
	for day := 0; day <= duration; day++ {
		out = append(out, model.BurndownPoint{
			SprintDay:   day,
			StoryPoints: float64(total) * (1 - float64(day)/float64(duration)),
			SeriesType:  0,
		})
	}
	if len(history) == 0 {
		current := min(daysBetween(start, now), duration-1)
		out = append(out, model.BurndownPoint{SprintDay: current, StoryPoints: float64(total - completed), SeriesType: 1})
	}
	for _, h := range history {
		out = append(out, model.BurndownPoint{
			SprintDay:   min(h.Day, duration),
			StoryPoints: float64(total - h.CompletedCount),
			SeriesType:  1,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SprintDay < out[j].SprintDay })
	return out
}

// SprintBurndown computes the burndown of the current sprint's tasks.
func SprintBurndown(ctx context.Context, fb *firestore.Client, projectID string) ([]model.BurndownPoint, error) {
	sprint, err := CurrentSprint(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, errNoActiveSprint
	}
	statuses, err := ListStatusTypes(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := listTasks(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	items := sprintItemSet(*sprint)
	var sprintTasks []model.Task
	for _, t := range tasks {
		if items[t.ItemID] {
			sprintTasks = append(sprintTasks, t)
		}
	}
	done := doneStatusIDs(statuses)
	completed := 0
	for _, t := range sprintTasks {
		if done[t.StatusID] {
			completed++
		}
	}
	now := time.Now()
	history := BurndownHistoryOf(sprintTasks, done, sprint.StartDate, sprint.EndDate, now)
	return BurndownData(sprint.StartDate, sprint.EndDate, len(sprintTasks), completed, history, now), nil
}
