package services

import (
	"tenor/model"

	"cloud.google.com/go/firestore"
)

// Tag collections under projects/{id}/settings/settings.
const (
	StatusTypes      = "statusTypes"
	PriorityTypes    = "priorityTypes"
	BacklogTags      = "backlogTags"
	RequirementTypes = "requirementTypes"
	RequirementFocus = "requirementFocus"
)

func UsersRef(fb *firestore.Client) *firestore.CollectionRef {
	return fb.Collection("users")
}

func ProjectsRef(fb *firestore.Client) *firestore.CollectionRef {
	return fb.Collection("projects")
}

func ProjectRef(fb *firestore.Client, projectID string) *firestore.DocumentRef {
	return ProjectsRef(fb).Doc(projectID)
}

func SettingsRef(fb *firestore.Client, projectID string) *firestore.DocumentRef {
	return ProjectRef(fb, projectID).Collection("settings").Doc("settings")
}

func RolesRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return SettingsRef(fb, projectID).Collection("userTypes")
}

func TagsRef(fb *firestore.Client, projectID, collection string) *firestore.CollectionRef {
	return SettingsRef(fb, projectID).Collection(collection)
}

func MembersRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return ProjectRef(fb, projectID).Collection("users")
}

func ItemsRef(fb *firestore.Client, projectID string, t model.ItemType) *firestore.CollectionRef {
	return ProjectRef(fb, projectID).Collection(t.Collection())
}

func ActivityRef(fb *firestore.Client, projectID string) *firestore.CollectionRef {
	return ProjectRef(fb, projectID).Collection("activity")
}

func ProductivityRef(fb *firestore.Client, projectID string) *firestore.DocumentRef {
	return ProjectRef(fb, projectID).Collection("performance").Doc("productivity")
}

func TopProjectsCacheRef(fb *firestore.Client, userID string) *firestore.DocumentRef {
	return UsersRef(fb).Doc(userID).Collection("cache").Doc("TopProjectsStatus")
}

func RefreshTokenRef(fb *firestore.Client, userID string) *firestore.DocumentRef {
	return fb.Collection("refreshTokens").Doc(userID)
}

func TeamRetrospectiveRef(fb *firestore.Client, projectID, sprintID string) *firestore.DocumentRef {
	return ProjectRef(fb, projectID).Collection("teamRetrospectives").Doc(sprintID)
}

func PersonalRetrospectiveRef(fb *firestore.Client, projectID, userID string) *firestore.DocumentRef {
	return ProjectRef(fb, projectID).Collection("personalRetrospectives").Doc(userID)
}

// RetrospectiveAnswersRef holds one document per member for a sprint.
func RetrospectiveAnswersRef(fb *firestore.Client, projectID, sprintID string) *firestore.CollectionRef {
	return ProjectRef(fb, projectID).Collection("retrospectives").Doc(sprintID).Collection("answers")
}

func EmotionLogsRef(fb *firestore.Client, userID string) *firestore.CollectionRef {
	return UsersRef(fb).Doc(userID).Collection("emotionLogs")
}
