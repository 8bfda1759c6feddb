package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Published bool      `gorm:"not null" json:"published"` // no gorm default: an explicit false must reach the row
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Not a column; rendered from Content before the post is returned
	ContentHTML string `gorm:"-" json:"content_html"`
}
