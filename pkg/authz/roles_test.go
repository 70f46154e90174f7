package authz

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Role
		wantErr bool
	}{
		{name: "system owner", in: "system_owner", want: RoleSystemOwner},
		{name: "teacher", in: "teacher", want: RoleTeacher},
		{name: "class teacher", in: "class_teacher", want: RoleClassTeacher},
		{name: "student", in: "student", want: RoleStudent},
		{name: "parent", in: "parent", want: RoleParent},
		{name: "unknown", in: "superhero", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "case sensitive", in: "Teacher", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRole(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsAuthorized(t *testing.T) {
	tests := []struct {
		name    string
		actor   []Role
		allowed []Role
		want    bool
	}{
		{
			name:    "single matching role",
			actor:   []Role{RoleTeacher},
			allowed: []Role{RoleTeacher},
			want:    true,
		},
		{
			name:    "one of several matches",
			actor:   []Role{RoleStudent, RoleClassTeacher},
			allowed: []Role{RoleTeacher, RoleClassTeacher},
			want:    true,
		},
		{
			name:    "no overlap",
			actor:   []Role{RoleStudent},
			allowed: []Role{RoleTeacher, RoleClassTeacher},
			want:    false,
		},
		{
			name:    "empty actor set",
			actor:   nil,
			allowed: []Role{RoleTeacher},
			want:    false,
		},
		{
			name:    "empty allow list",
			actor:   []Role{RoleSystemOwner},
			allowed: nil,
			want:    false,
		},
		{
			name:    "both empty",
			actor:   nil,
			allowed: nil,
			want:    false,
		},
		{
			name:    "owner is not implicitly allowed",
			actor:   []Role{RoleSystemOwner},
			allowed: []Role{RoleTeacher},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthorized(NewRoleSet(tt.actor...), tt.allowed); got != tt.want {
				t.Errorf("IsAuthorized(%v, %v) = %v, want %v", tt.actor, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet(RoleTeacher, RoleParent, RoleTeacher)

	if !set.Has(RoleTeacher) {
		t.Error("expected set to contain teacher")
	}
	if set.Has(RoleStudent) {
		t.Error("did not expect set to contain student")
	}
	if got := len(set.Slice()); got != 2 {
		t.Errorf("duplicate roles should collapse, got %d entries", got)
	}
}
