package services

import (
	"testing"

	"propel-server/models"

	"github.com/stretchr/testify/require"
)

func TestResolveConnectionStatus(t *testing.T) {
	pending := []models.Connection{
		{UserID: 1, ConnectedUserID: 2, Status: models.ConnectionStatusPending},
		{UserID: 3, ConnectedUserID: 1, Status: models.ConnectionStatusPending},
	}

	require.Equal(t, ConnectionPending, ResolveConnectionStatus(1, 2, nil, pending))
	require.Equal(t, ConnectionReceived, ResolveConnectionStatus(1, 3, nil, pending))
	require.Equal(t, ConnectionNone, ResolveConnectionStatus(1, 4, nil, pending))

	// An accepted connection wins over any stale pending edge
	require.Equal(t, ConnectionConnected, ResolveConnectionStatus(1, 2, []uint{2}, pending))
}

func TestResolveConnectionStatusSymmetry(t *testing.T) {
	// From the other side, the same edge reads as received
	pending := []models.Connection{
		{UserID: 1, ConnectedUserID: 2, Status: models.ConnectionStatusPending},
	}
	require.Equal(t, ConnectionPending, ResolveConnectionStatus(1, 2, nil, pending))
	require.Equal(t, ConnectionReceived, ResolveConnectionStatus(2, 1, nil, pending))
}

func TestConnectedUserIDs(t *testing.T) {
	accepted := []models.Connection{
		{UserID: 1, ConnectedUserID: 2, Status: models.ConnectionStatusAccepted},
		{UserID: 3, ConnectedUserID: 1, Status: models.ConnectionStatusAccepted},
		{UserID: 3, ConnectedUserID: 1, Status: models.ConnectionStatusAccepted},
	}

	ids := ConnectedUserIDs(1, accepted)
	require.ElementsMatch(t, []uint{2, 3}, ids)
}
