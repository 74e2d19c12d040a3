package models

import "time"

// ActorRole enumerates the platform roles an actor may hold.
type ActorRole string

// Platform roles.
const (
	RoleStudent ActorRole = "student"
	RoleMentor  ActorRole = "mentor"
	RoleAdmin   ActorRole = "admin"
)

// Valid reports whether the role is one of the known platform roles.
func (r ActorRole) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// Actor represents an authenticated participant. The master flag marks a
// mentor who owns classrooms; only the workflow engine mutates it.
type Actor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role        ActorRole `gorm:"size:32;not null;default:student" json:"role"`
	IsMaster    bool      `gorm:"not null;default:false" json:"is_master"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
