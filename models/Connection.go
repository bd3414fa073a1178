package models

import "time"

const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
)

// Connection is a single directed edge: UserID sent the request,
// ConnectedUserID received it. "received" is never stored; it is derived by
// reading the edge from the other side. An accepted edge connects both
// profiles regardless of direction.
//
// No soft delete: a disconnected pair must be able to reconnect, and a
// soft-deleted row would still occupy the unique pair index.
type Connection struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"userID" gorm:"not null;index:idx_connection_pair,unique"`
	ConnectedUserID uint      `json:"connectedUserID" gorm:"not null;index:idx_connection_pair,unique"`
	Status          string    `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	User          User `json:"-" gorm:"foreignKey:UserID"`
	ConnectedUser User `json:"-" gorm:"foreignKey:ConnectedUserID"`
}
