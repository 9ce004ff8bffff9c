package model

import (
	"fmt"
	"strings"
	"time"
)

// Role scopes a participant's access to a project.
type Role string

const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole accepts editor or viewer, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer:
		return RoleViewer, nil
	}
	return "", fmt.Errorf("invalid role %q (want editor or viewer)", s)
}

type Project struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     uint      `json:"owner_id"`
	Owner       *User     `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// OwnedBy reports whether u owns the project.
func (p Project) OwnedBy(u *User) bool {
	if u == nil {
		return false
	}
	if p.Owner != nil {
		return p.Owner.ID == u.ID
	}
	return p.OwnerID == u.ID
}

// Matches is the case-insensitive name/description search used by the project list.
func (p Project) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

// FilterProjects keeps the projects matching term, preserving order.
func FilterProjects(projects []Project, term string) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out
}

// OwnedCount counts projects owned by u.
func OwnedCount(projects []Project, u *User) (owned int) {
	for _, p := range projects {
		if p.OwnedBy(u) {
			owned++
		}
	}
	return
}

// Participant links a user to a project with a role.
type Participant struct {
	ID        uint      `json:"id"`
	ProjectID uint      `json:"project_id"`
	UserID    uint      `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
