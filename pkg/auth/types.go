package auth

import "strings"

// Role represents a user's role as configured in the identity provider
type Role struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

// User represents an account in the content/identity API
type User struct {
	ID                    int    `json:"id"`
	Username              string `json:"username"`
	Email                 string `json:"email"`
	Provider              string `json:"provider,omitempty"`
	Confirmed             bool   `json:"confirmed"`
	Blocked               bool   `json:"blocked"`
	CreatedAt             string `json:"createdAt,omitempty"`
	UpdatedAt             string `json:"updatedAt,omitempty"`
	Role                  Role   `json:"role"`
	IsOnboardingCompleted bool   `json:"isOnboardingCompleted"`
}

// IsTeacher reports whether the user holds the teacher role. Providers
// differ in how the role is configured, so both the role type and the
// role name are consulted.
func (u *User) IsTeacher() bool {
	name := strings.ToLower(u.Role.Name)
	return u.Role.Type == "teacher" ||
		name == "teacher" ||
		(u.Role.Type == "authenticated" && strings.Contains(name, "teacher"))
}

// IsStudent reports whether the user holds the student role. Students are
// typically the default authenticated role.
func (u *User) IsStudent() bool {
	name := strings.ToLower(u.Role.Name)
	return u.Role.Type == "student" ||
		name == "student" ||
		(u.Role.Type == "authenticated" && !u.IsTeacher())
}

// RoleDisplayName returns a human-readable role name
func (u *User) RoleDisplayName() string {
	switch {
	case u.IsTeacher():
		return "Teacher"
	case u.IsStudent():
		return "Student"
	default:
		return u.Role.Name
	}
}
