package model

import "time"

type Post struct {
	ID     uint `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID uint `gorm:"index;not null" json:"user_id"`

	Title   string `gorm:"size:100;not null" json:"title"`
	Content string `gorm:"not null" json:"content"`

	// Set once on creation, never touched by updates
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Author User `gorm:"foreignKey:UserID" json:"author"`
}
