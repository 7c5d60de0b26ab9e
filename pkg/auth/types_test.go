package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleHelpers(t *testing.T) {
	tests := []struct {
		name        string
		role        Role
		isTeacher   bool
		isStudent   bool
		displayName string
	}{
		{
			name:        "teacher by type",
			role:        Role{Name: "Staff", Type: "teacher"},
			isTeacher:   true,
			displayName: "Teacher",
		},
		{
			name:        "teacher by name",
			role:        Role{Name: "Teacher", Type: "custom"},
			isTeacher:   true,
			displayName: "Teacher",
		},
		{
			name:        "authenticated role named for teachers",
			role:        Role{Name: "Teacher Accounts", Type: "authenticated"},
			isTeacher:   true,
			displayName: "Teacher",
		},
		{
			name:        "student by type",
			role:        Role{Name: "Learner", Type: "student"},
			isStudent:   true,
			displayName: "Student",
		},
		{
			name:        "default authenticated user is a student",
			role:        Role{Name: "Authenticated", Type: "authenticated"},
			isStudent:   true,
			displayName: "Student",
		},
		{
			name:        "unrecognized role keeps its own name",
			role:        Role{Name: "Moderator", Type: "moderator"},
			displayName: "Moderator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			assert.Equal(t, tt.isTeacher, user.IsTeacher())
			assert.Equal(t, tt.isStudent, user.IsStudent())
			assert.Equal(t, tt.displayName, user.RoleDisplayName())
		})
	}
}
