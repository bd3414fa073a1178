package models

import "gorm.io/gorm"

const (
	NotificationTypeConnectionRequest  = "connection_request"
	NotificationTypeConnectionAccepted = "connection_accepted"
	NotificationTypeShortlistInvite    = "shortlist_invitation"
	NotificationTypeMention            = "mention"
	NotificationTypeComment            = "comment"
	NotificationTypeLike               = "like"
	NotificationTypeRating             = "rating"
)

type Notification struct {
	gorm.Model
	Type          string `json:"type" gorm:"type:varchar(30);not null;index"`
	ActorID       uint   `json:"actorID" gorm:"index"`
	RecipientID   uint   `json:"recipientID" gorm:"not null;index"`
	ReferenceID   *uint  `json:"referenceID"`
	ReferenceType string `json:"referenceType" gorm:"type:varchar(20)"` // connection, shortlist, post, rating
	Message       string `json:"message" gorm:"size:500"`
	IsRead        bool   `json:"isRead" gorm:"default:false;index"`

	Actor User `json:"actor" gorm:"foreignKey:ActorID"`
}
