package types

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`

	Image   AssetRef `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	Content AssetRef `gorm:"embedded;embeddedPrefix:content_" json:"content"`

	PublicationDate time.Time `gorm:"not null;default:now();column:publication_date" json:"publication_date"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Article) TableName() string {
	return "article"
}

func (a *Article) Assets() []AssetRef {
	return []AssetRef{a.Image, a.Content}
}
