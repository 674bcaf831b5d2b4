package models

type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"` // plaintext by contract, see auth.Authenticator
	Role     string `json:"role" yaml:"role"`         // admin, front_office
	Name     string `json:"name" yaml:"name"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
