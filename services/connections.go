package services

import (
	"propel-server/models"

	"golang.org/x/exp/slices"
)

type ConnectionStatus string

const (
	ConnectionNone      ConnectionStatus = "none"
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionReceived  ConnectionStatus = "received"
	ConnectionConnected ConnectionStatus = "connected"
)

// ResolveConnectionStatus derives the relationship between the viewer and a
// candidate profile from the viewer's accepted connections and pending edges.
//
// Precedence: connected beats pending beats received. Duplicate edges for the
// same ordered pair violate the unique index; if they occur anyway the first
// match wins, which callers must not rely on.
func ResolveConnectionStatus(viewerID, candidateID uint, connectedIDs []uint, pendingEdges []models.Connection) ConnectionStatus {
	if slices.Contains(connectedIDs, candidateID) {
		return ConnectionConnected
	}

	for _, edge := range pendingEdges {
		if edge.UserID == viewerID && edge.ConnectedUserID == candidateID {
			return ConnectionPending
		}
	}

	for _, edge := range pendingEdges {
		if edge.UserID == candidateID && edge.ConnectedUserID == viewerID {
			return ConnectionReceived
		}
	}

	return ConnectionNone
}

// ConnectedUserIDs collapses accepted edges to the IDs of the users on the
// other side, whichever direction the edge was stored in.
func ConnectedUserIDs(viewerID uint, accepted []models.Connection) []uint {
	ids := make([]uint, 0, len(accepted))
	for _, edge := range accepted {
		other := edge.ConnectedUserID
		if edge.ConnectedUserID == viewerID {
			other = edge.UserID
		}
		if other != viewerID && !slices.Contains(ids, other) {
			ids = append(ids, other)
		}
	}
	return ids
}
