package model

// Session is the explicit actor context passed into every command. Handlers
// resolve it once per request; services never reach into ambient state to
// discover who is calling.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanSupervise reports whether the actor holds supervisor-level privileges.
// Admins supervise implicitly.
func (s Session) CanSupervise() bool {
	return s.Role == RoleSupervisor || s.Role == RoleAdmin
}
