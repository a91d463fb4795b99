package models

import "time"

// User is a curator or staff account. Changes made by pipelines are attributed to one.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	IsActive bool   `json:"is_active"`
	IsStaff  bool   `json:"is_staff" gorm:"default:false"`
}

// TableName returns the explicit table name.
func (User) TableName() string {
	return "users"
}

// History records one mutation made on behalf of a user.
type History struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `json:"user_id" gorm:"index"`
	Table    string `json:"table" gorm:"column:table_name;index"`
	RecordID uint   `json:"record_id"`
	Action   string `json:"action"` // create, update, delete
	Detail   string `json:"detail,omitempty"`
}

// TableName returns the explicit table name.
func (History) TableName() string {
	return "history"
}
