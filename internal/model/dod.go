package model

import "time"

// DoD is a Definition of Done checklist attached to a project.
type DoD struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ProjectID   uint      `json:"project_id"`
	CreatedBy   uint      `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	Creator     *User     `json:"creator,omitempty"`
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
}

// Status is the label shown next to a DoD title.
func (d DoD) Status() string {
	if d.IsActive {
		return "Active"
	}
	return "Inactive"
}
