package services

import "testing"

func TestMapRoleID(t *testing.T) {
	seeded := map[string]string{"admin": "r-admin", "developer": "r-dev"}

	tests := []struct {
		requested string
		want      string
	}{
		{"owner", "owner"},
		{"admin", "r-admin"},
		{"r-dev", "r-dev"},
		{"manager", "none"},
		{"", "none"},
	}
	for _, tt := range tests {
		if got := mapRoleID(tt.requested, seeded); got != tt.want {
			t.Errorf("mapRoleID(%q) = %q, want %q", tt.requested, got, tt.want)
		}
	}
}
