package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

var retrospectiveQuestions = [model.RetrospectiveQuestionCount]string{
	"Think about your role in the project. How did it feel to carry your responsibilities, and what satisfied you?",
	"Think about your team. How would you describe the energy and collaboration within your team and the company?",
	"Imagine the next sprint. What small changes could make it better, and what would help you thrive even more?",
}

func RetrospectiveQuestions() []string {
	return retrospectiveQuestions[:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// teamProgress counts the sprint's items and their story points. Items
// with an automatic status count as done when their tasks say so.
func teamProgress(entries []backlogEntry, l *lookups, sprintID string, points []int) model.TeamProgress {
	var p model.TeamProgress
	done := doneStatusIDs(l.statuses)
	for _, e := range entries {
		if e.SprintID != sprintID {
			continue
		}
		finished := isItemDone(e.BacklogItem, l.tasks[e.ID], l.statuses, e.Type == model.ItemIssue, done)
		sp := e.Size.StoryPoints(points)
		p.TotalStoryPoints += sp
		if finished {
			p.CompletedStoryPoints += sp
		}
		switch e.Type {
		case model.ItemIssue:
			p.TotalIssues++
			if finished {
				p.CompletedIssues++
			}
		case model.ItemUserStory:
			p.TotalUserStories++
			if finished {
				p.CompletedUserStories++
			}
		case model.ItemBacklogItem:
			p.TotalBacklogItems++
			if finished {
				p.CompletedBacklogItems++
			}
		}
	}
	return p
}

// personalProgress splits each item's story points evenly over its tasks
// and sums the share of the tasks assigned to userID.
func personalProgress(entries []backlogEntry, l *lookups, sprintID, userID string, points []int) model.PersonalProgress {
	p := model.PersonalProgress{SprintID: sprintID}
	done := doneStatusIDs(l.statuses)
	for _, e := range entries {
		if e.SprintID != sprintID {
			continue
		}
		tasks := l.tasks[e.ID]
		if len(tasks) == 0 {
			continue
		}
		share := float64(e.Size.StoryPoints(points)) / float64(len(tasks))
		for _, t := range tasks {
			if t.AssigneeID != userID {
				continue
			}
			p.TotalTasks++
			p.TotalStoryPoints += share
			if done[t.StatusID] {
				p.CompletedTasks++
				p.CompletedStoryPoints += share
			}
		}
	}
	p.TotalStoryPoints = round2(p.TotalStoryPoints)
	p.CompletedStoryPoints = round2(p.CompletedStoryPoints)
	return p
}

func loadRetrospectiveData(ctx context.Context, fb *firestore.Client, projectID, sprintID string) ([]backlogEntry, *lookups, []int, error) {
	if _, err := GetSprint(ctx, fb, projectID, sprintID); err != nil {
		return nil, nil, nil, err
	}
	entries, err := listBacklogEntries(ctx, fb, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	l, err := loadLookups(ctx, fb, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	settings, err := GetSettings(ctx, fb, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	return entries, l, settings.StoryPointSizes, nil
}

// EnsureTeamProgress computes and stores the team progress of a sprint
// unless it is already stored.
func EnsureTeamProgress(ctx context.Context, fb *firestore.Client, projectID, sprintID string) (model.TeamProgress, error) {
	ref := TeamRetrospectiveRef(fb, projectID, sprintID)
	stored, err := getDoc[teamProgressDoc](ctx, ref, "Team progress not found")
	if err == nil {
		return stored.TeamProgress, nil
	}
	if !apperr.IsNotFound(err) {
		return model.TeamProgress{}, err
	}
	entries, l, points, err := loadRetrospectiveData(ctx, fb, projectID, sprintID)
	if err != nil {
		return model.TeamProgress{}, err
	}
	p := teamProgress(entries, l, sprintID, points)
	p.UpdatedAt = time.Now()
	if _, err := ref.Set(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

func GetTeamProgress(ctx context.Context, fb *firestore.Client, projectID, sprintID string) (model.TeamProgress, error) {
	stored, err := getDoc[teamProgressDoc](ctx, TeamRetrospectiveRef(fb, projectID, sprintID), "Team progress not found")
	return stored.TeamProgress, err
}

type teamProgressDoc struct{ model.TeamProgress }

func (*teamProgressDoc) SetID(string) {}

type personalProgressDoc struct{ model.PersonalProgress }

func (*personalProgressDoc) SetID(string) {}

// EnsurePersonalProgress stores a member's progress for the sprint. The
// document is per member and replaced when the sprint changes.
func EnsurePersonalProgress(ctx context.Context, fb *firestore.Client, projectID, sprintID, userID string) (model.PersonalProgress, error) {
	ref := PersonalRetrospectiveRef(fb, projectID, userID)
	stored, err := getDoc[personalProgressDoc](ctx, ref, "Personal progress not found")
	if err == nil && stored.SprintID == sprintID {
		return stored.PersonalProgress, nil
	}
	if err != nil && !apperr.IsNotFound(err) {
		return model.PersonalProgress{}, err
	}
	entries, l, points, err := loadRetrospectiveData(ctx, fb, projectID, sprintID)
	if err != nil {
		return model.PersonalProgress{}, err
	}
	p := personalProgress(entries, l, sprintID, userID, points)
	p.UpdatedAt = time.Now()
	if _, err := ref.Set(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

func GetPersonalProgress(ctx context.Context, fb *firestore.Client, projectID, sprintID, userID string) (model.PersonalProgress, error) {
	stored, err := getDoc[personalProgressDoc](ctx, PersonalRetrospectiveRef(fb, projectID, userID), "Personal progress not found")
	if err != nil {
		return model.PersonalProgress{}, err
	}
	if stored.SprintID != sprintID {
		return model.PersonalProgress{}, apperr.NotFound("Personal progress not found")
	}
	return stored.PersonalProgress, nil
}

func GetRetrospectiveAnswers(ctx context.Context, fb *firestore.Client, projectID, sprintID, userID string) (model.RetrospectiveAnswers, error) {
	a, err := getDoc[model.RetrospectiveAnswers](ctx, RetrospectiveAnswersRef(fb, projectID, sprintID).Doc(userID), "Answers not found")
	if apperr.IsNotFound(err) {
		return model.RetrospectiveAnswers{UserID: userID, Answers: make([]string, model.RetrospectiveQuestionCount)}, nil
	}
	for len(a.Answers) < model.RetrospectiveQuestionCount {
		a.Answers = append(a.Answers, "")
	}
	return a, err
}

// SaveRetrospectiveAnswer stores the answer to one question.
func SaveRetrospectiveAnswer(ctx context.Context, fb *firestore.Client, projectID, sprintID, userID string, index int, answer string) error {
	if index < 0 || index >= model.RetrospectiveQuestionCount {
		return apperr.BadRequest("Question index must be between 0 and %d.", model.RetrospectiveQuestionCount-1)
	}
	if _, err := GetSprint(ctx, fb, projectID, sprintID); err != nil {
		return err
	}
	current, err := GetRetrospectiveAnswers(ctx, fb, projectID, sprintID, userID)
	if err != nil {
		return err
	}
	current.Answers[index] = answer
	_, err = RetrospectiveAnswersRef(fb, projectID, sprintID).Doc(userID).Set(ctx, map[string]any{
		"answers":   current.Answers,
		"updatedAt": time.Now(),
	}, firestore.MergeAll)
	return err
}

func validHappiness(h int) error {
	if h < 1 || h > 10 {
		return apperr.BadRequest("Happiness rating must be between 1 and 10.")
	}
	return nil
}

func SaveHappiness(ctx context.Context, fb *firestore.Client, projectID, sprintID, userID string, happiness int) error {
	if err := validHappiness(happiness); err != nil {
		return err
	}
	if _, err := GetSprint(ctx, fb, projectID, sprintID); err != nil {
		return err
	}
	_, err := RetrospectiveAnswersRef(fb, projectID, sprintID).Doc(userID).Set(ctx, map[string]any{
		"happiness": happiness,
		"updatedAt": time.Now(),
	}, firestore.MergeAll)
	return err
}

func retrospectivePrompt(answers []string) string {
	s := "Given the following answers to questions, improve each answer only by correcting grammar and spelling mistakes. Do not change the content of the answers. Some words might be wrong, feel free to correct them based on the context and the rest of their responses. Based on their answers, provide a happiness rating from 1 to 10, where 1 is the lowest and 10 is the highest. The rating should be based on the overall sentiment of the answers. Finally, also provide a happiness analysis where you explain the rating and the overall sentiment of the answers. Make the analysis match the tone of their answers (opt for more informal), and talk to them directly, don't include the rating in the analysis and say that you're a sentiment analyzer, and make it only 2 sentences long, maximum. Also thank the user for participating. If an answer is empty, leave it empty in the response as well. Do NOT come up with your own answers for any reason.\n"
	for i, q := range retrospectiveQuestions {
		s += fmt.Sprintf("\n\nQuestion %d: %s\n\n### Answer %d:\n\n%s\n\n### End of Answer %d\n", i+1, q, i+1, answers[i], i+1)
	}
	return s
}

// ProcessRetrospectiveAnswers corrects the answers and rates the member's
// happiness.
func ProcessRetrospectiveAnswers(ctx context.Context, ai *AIClient, answers []string) (model.ProcessedRetrospective, error) {
	if len(answers) < model.RetrospectiveQuestionCount {
		return model.ProcessedRetrospective{}, apperr.BadRequest("Not enough answers provided.")
	}
	return GenerateJSON[model.ProcessedRetrospective](ctx, ai, retrospectivePrompt(answers))
}

// SendRetrospectiveReport stores the member's final answers and the AI
// happiness rating.
func SendRetrospectiveReport(ctx context.Context, fb *firestore.Client, ai *AIClient, projectID, sprintID, userID string, answers []string, summarize bool) (model.ProcessedRetrospective, error) {
	processed, err := ProcessRetrospectiveAnswers(ctx, ai, answers)
	if err != nil {
		return processed, err
	}
	if _, err := GetSprint(ctx, fb, projectID, sprintID); err != nil {
		return processed, err
	}
	final := answers[:model.RetrospectiveQuestionCount]
	if summarize {
		final = processed.Answers
	}
	_, err = RetrospectiveAnswersRef(fb, projectID, sprintID).Doc(userID).Set(ctx, model.RetrospectiveAnswers{
		Answers:   final,
		Happiness: processed.HappinessRating,
		UpdatedAt: time.Now(),
	})
	return processed, err
}
