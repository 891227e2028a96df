package types

import (
	"time"

	"github.com/google/uuid"
)

type Education struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`

	VideoURL string   `gorm:"column:video_url" json:"video_url,omitempty"`
	Image    AssetRef `gorm:"embedded;embeddedPrefix:image_" json:"image"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Education) TableName() string {
	return "education"
}

func (e *Education) Assets() []AssetRef {
	if e.Image.IsZero() {
		return nil
	}
	return []AssetRef{e.Image}
}
