package models

import "time"

// Classroom is an instructional unit owned by a master mentor. Classrooms are
// created and deactivated by an external catalog service; this subsystem only
// reads them when validating requests and memberships.
//
// IsActive and MaxCapacity carry no column defaults: gorm omits zero-valued
// fields that have one, which would turn a deactivated classroom back on (or
// an unlimited capacity into a finite one) at insert time.
type Classroom struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	MaxCapacity int       `gorm:"not null" json:"max_capacity"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
