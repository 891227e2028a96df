package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Workshop struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"not null;column:title" json:"title"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`

	Poster AssetRef `gorm:"embedded;embeddedPrefix:poster_" json:"poster"`

	Objective    string                         `gorm:"not null;column:objective" json:"objective"`
	Facilities   datatypes.JSONSlice[string]    `gorm:"column:facilities" json:"facilities"`
	Topics       datatypes.JSONSlice[string]    `gorm:"column:topics" json:"topics"`
	Moderators   datatypes.JSONSlice[string]    `gorm:"column:moderators" json:"moderators"`
	Speakers     datatypes.JSONSlice[string]    `gorm:"column:speakers" json:"speakers"`
	Participants datatypes.JSONSlice[uuid.UUID] `gorm:"column:participants" json:"participants"`

	Date      time.Time `gorm:"column:date" json:"date"`
	StartTime string    `gorm:"not null;column:start_time" json:"start_time"`
	EndTime   string    `gorm:"not null;column:end_time" json:"end_time"`
	TimeZone  string    `gorm:"default:'WIB';column:time_zone" json:"time_zone"`
	Location  string    `gorm:"not null;column:location" json:"location"`
	Price     string    `gorm:"default:'free';column:price" json:"price"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Workshop) TableName() string {
	return "workshop"
}

func (w *Workshop) Assets() []AssetRef {
	if w.Poster.IsZero() {
		return nil
	}
	return []AssetRef{w.Poster}
}
