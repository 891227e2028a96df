package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleRoot  = "root"
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func ValidRole(role string) bool {
	switch role {
	case RoleRoot, RoleAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     string    `gorm:"not null;default:'user';column:role" json:"role"`

	// Back-reference lists of owned content. Every listed ID must point at a
	// record whose author_id equals this user's ID.
	ArticleIDs   datatypes.JSONSlice[uuid.UUID] `gorm:"column:article_ids" json:"article_ids"`
	EducationIDs datatypes.JSONSlice[uuid.UUID] `gorm:"column:education_ids" json:"education_ids"`
	WorkshopIDs  datatypes.JSONSlice[uuid.UUID] `gorm:"column:workshop_ids" json:"workshop_ids"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
