package form

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (LoginForm) messages() map[string]string {
	return map[string]string{
		"email.required":    "Email is required",
		"email.email":       "Invalid email address",
		"password.required": "Password is required",
	}
}

type RegisterForm struct {
	Username string `form:"username" validate:"required,min=3"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

func (RegisterForm) messages() map[string]string {
	return map[string]string{
		"username.required": "Username is required",
		"username.min":      "Username must be at least 3 characters",
		"email.required":    "Email is required",
		"email.email":       "Invalid email address",
		"password.required": "Password is required",
		"password.min":      "Password must be at least 6 characters",
	}
}

type ProjectForm struct {
	Name        string `form:"name" validate:"required,min=3,max=100"`
	Description string `form:"description" validate:"max=500"`
}

func (ProjectForm) messages() map[string]string {
	return map[string]string{
		"name.required":   "Project name is required",
		"name.min":        "Project name must be at least 3 characters",
		"name.max":        "Project name must be less than 100 characters",
		"description.max": "Description must be less than 500 characters",
	}
}

type DoDForm struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
}

func (DoDForm) messages() map[string]string {
	return map[string]string{"title.required": "Title is required"}
}

type ItemForm struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	Order       int    `form:"order"`
	IsRequired  bool   `form:"is_required"`
}

func (ItemForm) messages() map[string]string {
	return map[string]string{"title.required": "Title is required"}
}

type ParticipantForm struct {
	Email string `form:"email" validate:"required,emailpattern"`
	Role  string `form:"role" validate:"required,oneof=editor viewer"`
}

func (ParticipantForm) messages() map[string]string {
	return map[string]string{
		"email.required":     "Email is required",
		"email.emailpattern": "Invalid email address",
		"role.required":      "Role is required",
		"role.oneof":         "Role must be editor or viewer",
	}
}
