package models

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UnknownGrade buckets statistics for users without a grade
const UnknownGrade = "unknown"

type User struct {
	Entity
	Account      string   `json:"account" gorm:"uniqueIndex;not null;size:20"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"not null;default:'user'"`
	Grade        string   `json:"grade" gorm:"size:50"`
	IsBlocked    bool     `json:"isBlocked"`
	IsDeleted    bool     `json:"isDeleted" gorm:"index"`
}

// GroupOf returns the statistics group for a user grade
func GroupOf(grade string) string {
	if grade == "" {
		return UnknownGrade
	}
	return grade
}
