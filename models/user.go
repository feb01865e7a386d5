package models

// User represents an account created from a verified third-party identity.
// Email is the correlation key: a user is created the first time an identity
// with that email logs in, and never updated or deleted afterwards.
type User struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"not null"`
	Email   string `gorm:"uniqueIndex;not null"`
	Picture string
}

func (u *User) TableName() string {
	return "users"
}
