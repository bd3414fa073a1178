package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ShortlistRoleOwner  = "owner"
	ShortlistRoleMember = "member"
)

// Shortlist is a named collection of property references. ShareToken is
// assigned once at creation and never rotates; knowing it grants read access
// whenever IsShared is on.
type Shortlist struct {
	gorm.Model
	UserID      uint   `json:"userID" gorm:"not null;index"`
	Name        string `json:"name" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"size:500"`
	IsShared    bool   `json:"isShared" gorm:"default:false"`
	ShareToken  string `json:"shareToken" gorm:"uniqueIndex;size:64;not null"`

	Owner      User                `json:"owner" gorm:"foreignKey:UserID"`
	Properties []ShortlistProperty `json:"properties" gorm:"foreignKey:ShortlistID"`
	Members    []ShortlistMember   `json:"members" gorm:"foreignKey:ShortlistID"`
}

type ShortlistProperty struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ShortlistID uint      `json:"shortlistID" gorm:"not null;index:idx_shortlist_property,unique"`
	PropertyID  uint      `json:"propertyID" gorm:"not null;index:idx_shortlist_property,unique"`
	AddedByID   uint      `json:"addedByID" gorm:"not null"`
	AddedAt     time.Time `json:"addedAt" gorm:"autoCreateTime"`

	Property Property `json:"property" gorm:"foreignKey:PropertyID"`
	AddedBy  User     `json:"-" gorm:"foreignKey:AddedByID"`
}

// ShortlistMember backs every membership, the owner's included, so membership
// queries have a single source of truth.
type ShortlistMember struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ShortlistID uint      `json:"shortlistID" gorm:"not null;index:idx_shortlist_member,unique"`
	UserID      uint      `json:"userID" gorm:"not null;index:idx_shortlist_member,unique"`
	Role        string    `json:"role" gorm:"type:varchar(16);not null"` // owner, member
	CreatedAt   time.Time `json:"createdAt"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
