package model

const (
	OwnerRoleID = "owner"
	EmptyRoleID = "none"
)

// Role is stored under projects/{id}/settings/settings/userTypes. One
// field per flag keeps the documents readable from the console.
type Role struct {
	ID            string     `firestore:"-" json:"id"`
	Label         string     `firestore:"label" json:"label"`
	Settings      Permission `firestore:"settings" json:"settings"`
	Performance   Permission `firestore:"performance" json:"performance"`
	Sprints       Permission `firestore:"sprints" json:"sprints"`
	Scrumboard    Permission `firestore:"scrumboard" json:"scrumboard"`
	Issues        Permission `firestore:"issues" json:"issues"`
	Backlog       Permission `firestore:"backlog" json:"backlog"`
	Retrospective Permission `firestore:"retrospective" json:"retrospective"`
	Reviews       Permission `firestore:"reviews" json:"reviews"`
}

func (r Role) Level(flag Flag) Permission {
	switch flag {
	case FlagSettings:
		return r.Settings
	case FlagPerformance:
		return r.Performance
	case FlagSprints:
		return r.Sprints
	case FlagScrumboard:
		return r.Scrumboard
	case FlagIssues:
		return r.Issues
	case FlagBacklog:
		return r.Backlog
	case FlagRetrospective:
		return r.Retrospective
	case FlagReviews:
		return r.Reviews
	}
	return PermissionNone
}

func (r *Role) SetLevel(flag Flag, level Permission) {
	switch flag {
	case FlagSettings:
		r.Settings = level
	case FlagPerformance:
		r.Performance = level
	case FlagSprints:
		r.Sprints = level
	case FlagScrumboard:
		r.Scrumboard = level
	case FlagIssues:
		r.Issues = level
	case FlagBacklog:
		r.Backlog = level
	case FlagRetrospective:
		r.Retrospective = level
	case FlagReviews:
		r.Reviews = level
	}
}

func uniformRole(id, label string, level Permission) Role {
	r := Role{ID: id, Label: label}
	for _, f := range AllFlags {
		r.SetLevel(f, level)
	}
	return r
}

var (
	OwnerRole = uniformRole(OwnerRoleID, "Owner", PermissionWrite)
	EmptyRole = uniformRole(EmptyRoleID, "No role", PermissionNone)
)

// DefaultRoles are seeded into every new project.
func DefaultRoles() []Role {
	developer := Role{
		ID:            "developer",
		Label:         "Developer",
		Sprints:       PermissionRead,
		Scrumboard:    PermissionRead,
		Issues:        PermissionRead,
		Backlog:       PermissionRead,
		Retrospective: PermissionWrite,
		Reviews:       PermissionWrite,
	}
	return []Role{
		uniformRole("admin", "Admin", PermissionWrite),
		developer,
		uniformRole("viewer", "Viewer", PermissionNone),
	}
}

func (r *Role) SetID(id string) { r.ID = id }
