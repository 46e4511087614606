// Package model defines database models
package model

import "time"

// DefaultImageFile is served for every account that never uploaded
// a profile picture
const DefaultImageFile = "default.png"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:20;uniqueIndex;not null" json:"username"`
	// Never serialized. Posts embed their author, so a json tag here
	// would leak the username to email mapping through every feed
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"-"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ImageFile    string    `gorm:"size:64;not null;default:default.png" json:"image_file"`
	CreatedAt    time.Time `json:"created_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"-"`
}
