package models

import "gorm.io/gorm"

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
)

// ShortlistInvitation holds at most one row per (shortlist, invitee). A
// rejected invitation is flipped back to pending on re-invite instead of
// inserting a duplicate.
type ShortlistInvitation struct {
	gorm.Model
	ShortlistID uint   `json:"shortlistID" gorm:"not null;index:idx_shortlist_invitee,unique"`
	InviteeID   uint   `json:"inviteeID" gorm:"not null;index:idx_shortlist_invitee,unique"`
	InviterID   uint   `json:"inviterID" gorm:"not null"`
	Status      string `json:"status" gorm:"type:varchar(16);not null;index"`

	Shortlist Shortlist `json:"shortlist" gorm:"foreignKey:ShortlistID"`
	Inviter   User      `json:"inviter" gorm:"foreignKey:InviterID"`
	Invitee   User      `json:"-" gorm:"foreignKey:InviteeID"`
}
