package model

// User is the identity half of a credential and the shape of every
// user reference the server embeds (owner, creator, participant).
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName falls back to "Unknown" for missing references.
func (u *User) DisplayName() string {
	if u == nil || u.Username == "" {
		return "Unknown"
	}
	return u.Username
}
