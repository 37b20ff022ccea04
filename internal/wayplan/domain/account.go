package domain

import "time"

// DefaultRole is assigned to every account at registration.
const DefaultRole = "user"

type Account struct {
	ID        string
	UserName  string
	Email     string // stored lowercased; unique
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the public projection of an Account returned by register and
// login. It never carries credential material.
type Profile struct {
	ID        string
	UserName  string
	Email     string
	Roles     []string
	CreatedAt time.Time
}

func (a Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		UserName:  a.UserName,
		Email:     a.Email,
		Roles:     a.Roles,
		CreatedAt: a.CreatedAt,
	}
}
