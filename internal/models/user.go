package models

// User is a directory entry. A user without a password is a placeholder created
// by an invitation and can be claimed at registration.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"` // bcrypt hash, hidden by Public()
	IsAdmin  bool   `json:"isAdmin,omitempty"`
}

// PublicUser is the shape returned over the API.
type PublicUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"isAdmin"`
	HasPassword bool   `json:"hasPassword"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		HasPassword: u.Password != "",
	}
}
