package models

import (
	"time"
)

// Task is a to-do item owned by exactly one user. ClosedAt is set while the
// task is closed and cleared again when it is reopened.
type Task struct {
	ID          int        `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	IsOpen      bool       `json:"is_open" gorm:"default:true"`
	CreatedAt   time.Time  `json:"created_at"`
	Deadline    *time.Time `json:"deadline"`
	ClosedAt    *time.Time `json:"closed_at"`
	CreatedBy   int        `json:"created_by" gorm:"index;not null"`
}

func (Task) TableName() string {
	return "todos"
}

// ReminderRow is one row of the dispatcher's join between todos and users.
type ReminderRow struct {
	Task
	UserEmail string `json:"user_email"`
}
