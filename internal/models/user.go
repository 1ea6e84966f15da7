package models

import "time"

// User is a person. New-model recipes and friendships point at users.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Household is a group of people. LeaderID is empty when no leader was designated.
type Household struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeaderID  string    `json:"leaderId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks that the user has an ID.
func (u *User) Validate() error {
	if u.ID == "" {
		return invalid("User", "id is required")
	}
	return nil
}

// Validate checks that the household has an ID.
func (h *Household) Validate() error {
	if h.ID == "" {
		return invalid("Household", "id is required")
	}
	return nil
}
