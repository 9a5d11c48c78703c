package domain

import "time"

type ID string

type User struct {
	ID           ID
	Username     string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Public is the user record with the password hash stripped, safe to return
// to any authenticated caller.
type Public struct {
	ID        ID
	Username  string
	Name      string
	CreatedAt time.Time
}

func (u User) Public() Public {
	return Public{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
