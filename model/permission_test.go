package model

import "testing"

func TestCheckPermissions(t *testing.T) {
	developer := DefaultRoles()[1]

	tests := []struct {
		name     string
		required FlagsRequired
		role     Role
		want     Permission
	}{
		{"owner writes everything", GeneralPermissions, OwnerRole, PermissionWrite},
		{"empty role reads nothing", BacklogPermissions, EmptyRole, PermissionNone},
		{"developer reads backlog", BacklogPermissions, developer, PermissionRead},
		{"developer cannot see settings", SettingsPermissions, developer, PermissionNone},
		{"optimistic takes the highest", TagPermissions, developer, PermissionRead},
		{"sprint set falls back to sprints", SprintPermissions, developer, PermissionRead},
		{"review set uses retrospective", ReviewPermissions, developer, PermissionWrite},
		{
			"pessimistic takes the lowest",
			FlagsRequired{Flags: []Flag{FlagRetrospective, FlagSettings}},
			developer,
			PermissionNone,
		},
		{
			"pessimistic single flag",
			FlagsRequired{Flags: []Flag{FlagRetrospective}},
			developer,
			PermissionWrite,
		},
		{"no flags pessimistic", FlagsRequired{}, EmptyRole, PermissionWrite},
		{"no flags optimistic", FlagsRequired{Optimistic: true}, OwnerRole, PermissionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPermissions(tt.required, tt.role); got != tt.want {
				t.Errorf("CheckPermissions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeneralPermissionsSkipReviews(t *testing.T) {
	for _, f := range GeneralPermissions.Flags {
		if f == FlagReviews {
			t.Fatal("general permissions must not include reviews")
		}
	}
	if len(GeneralPermissions.Flags) != len(AllFlags)-1 {
		t.Errorf("len(GeneralPermissions.Flags) = %d, want %d", len(GeneralPermissions.Flags), len(AllFlags)-1)
	}
}

func TestRoleSetLevel(t *testing.T) {
	var r Role
	for _, f := range AllFlags {
		r.SetLevel(f, PermissionRead)
		if got := r.Level(f); got != PermissionRead {
			t.Errorf("Level(%s) = %v, want read", f, got)
		}
	}
	if got := r.Level("unknown"); got != PermissionNone {
		t.Errorf("Level(unknown) = %v, want none", got)
	}
}

func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles()
	if len(roles) != 3 {
		t.Fatalf("len(DefaultRoles()) = %d, want 3", len(roles))
	}
	admin, viewer := roles[0], roles[2]
	for _, f := range AllFlags {
		if admin.Level(f) != PermissionWrite {
			t.Errorf("admin %s = %v, want write", f, admin.Level(f))
		}
		if viewer.Level(f) != PermissionNone {
			t.Errorf("viewer %s = %v, want none", f, viewer.Level(f))
		}
	}
}

func TestParsePermission(t *testing.T) {
	for _, s := range []string{"none", "read", "write"} {
		p, ok := ParsePermission(s)
		if !ok || p.String() != s {
			t.Errorf("ParsePermission(%q) = %v, %v", s, p, ok)
		}
	}
	if _, ok := ParsePermission("admin"); ok {
		t.Error("ParsePermission(admin) should fail")
	}
}
