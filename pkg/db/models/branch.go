package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical shop location; orders, staff and delivery agents are
// scoped to exactly one branch.
type Branch struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Address     string     `gorm:"column:address;not null"`
	City        string     `gorm:"column:city;not null"`
	ManagerID   *uuid.UUID `gorm:"column:manager_id;type:uuid"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	OpeningTime string     `gorm:"column:opening_time;not null;default:'07:00'"`
	ClosingTime string     `gorm:"column:closing_time;not null;default:'19:00'"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
