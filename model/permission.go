package model

// Permission is the access level a role grants on one project area.
type Permission int

const (
	PermissionNone  Permission = 0
	PermissionRead  Permission = 1
	PermissionWrite Permission = 2
)

func (p Permission) String() string {
	switch p {
	case PermissionRead:
		return "read"
	case PermissionWrite:
		return "write"
	default:
		return "none"
	}
}

// ParsePermission accepts "none", "read" or "write".
func ParsePermission(s string) (Permission, bool) {
	switch s {
	case "none":
		return PermissionNone, true
	case "read":
		return PermissionRead, true
	case "write":
		return PermissionWrite, true
	}
	return PermissionNone, false
}

type Flag string

const (
	FlagSettings      Flag = "settings"
	FlagPerformance   Flag = "performance"
	FlagSprints       Flag = "sprints"
	FlagScrumboard    Flag = "scrumboard"
	FlagIssues        Flag = "issues"
	FlagBacklog       Flag = "backlog"
	FlagRetrospective Flag = "retrospective"
	FlagReviews       Flag = "reviews"
)

var AllFlags = []Flag{
	FlagSettings,
	FlagPerformance,
	FlagSprints,
	FlagScrumboard,
	FlagIssues,
	FlagBacklog,
	FlagRetrospective,
	FlagReviews,
}

func IsFlag(s string) bool {
	for _, f := range AllFlags {
		if string(f) == s {
			return true
		}
	}
	return false
}

// FlagsRequired lists the areas an operation touches. Pessimistic checks
// grant the lowest level among the flags, optimistic checks the highest.
type FlagsRequired struct {
	Flags      []Flag
	Optimistic bool
}

var (
	TagPermissions = FlagsRequired{
		Flags:      []Flag{FlagSettings, FlagBacklog, FlagIssues},
		Optimistic: true,
	}
	GeneralPermissions = FlagsRequired{
		Flags: []Flag{
			FlagBacklog, FlagSettings, FlagIssues, FlagScrumboard,
			FlagPerformance, FlagSprints, FlagRetrospective,
		},
		Optimistic: true,
	}
	UsersPermissions       = GeneralPermissions
	BacklogPermissions     = FlagsRequired{Flags: []Flag{FlagBacklog}, Optimistic: true}
	IssuePermissions       = FlagsRequired{Flags: []Flag{FlagIssues}, Optimistic: true}
	TaskPermissions        = FlagsRequired{Flags: []Flag{FlagIssues, FlagBacklog}, Optimistic: true}
	SettingsPermissions    = FlagsRequired{Flags: []Flag{FlagSettings}, Optimistic: true}
	PerformancePermissions = FlagsRequired{Flags: []Flag{FlagPerformance}, Optimistic: true}
	SprintPermissions      = FlagsRequired{Flags: []Flag{FlagSprints, FlagSettings}, Optimistic: true}
	ReviewPermissions      = FlagsRequired{Flags: []Flag{FlagRetrospective}, Optimistic: true}
	ScrumboardPermissions  = FlagsRequired{Flags: []Flag{FlagScrumboard}, Optimistic: true}
)

// CheckPermissions reduces the role's levels over the required flags. An
// optimistic check starts at none and keeps the highest level, a pessimistic
// one starts at write and keeps the lowest, so an empty pessimistic list
// grants write.
func CheckPermissions(required FlagsRequired, role Role) Permission {
	level := PermissionWrite
	if required.Optimistic {
		level = PermissionNone
	}
	for _, flag := range required.Flags {
		l := role.Level(flag)
		if required.Optimistic {
			level = max(level, l)
		} else {
			level = min(level, l)
		}
	}
	return level
}
