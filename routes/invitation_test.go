package routes

import (
	"fmt"
	"net/http"
	"testing"

	"propel-server/models"
	"propel-server/storage"

	"github.com/stretchr/testify/require"
)

func TestInviteIsIdempotentWhilePending(t *testing.T) {
	app := buildTestApp(t)

	owner := createTestUser(t, "owner", models.BadgeSeeker)
	invitee := createTestUser(t, "carol", models.BadgeSeeker)
	ownerToken := signTestToken(t, owner, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPost, "/api/shortlist/", ownerToken, map[string]string{"name": "Paris Flats"})
	require.Equal(t, http.StatusOK, resp.Code)
	var shortlist models.Shortlist
	require.NoError(t, storage.DB.First(&shortlist).Error)

	invitePath := fmt.Sprintf("/api/shortlist/%d/invitations", shortlist.ID)

	resp = doJSON(t, app, http.MethodPost, invitePath, ownerToken, map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = doJSON(t, app, http.MethodPost, invitePath, ownerToken, map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, true, decodeBody(t, resp)["alreadyInvited"])

	var count int64
	storage.DB.Model(&models.ShortlistInvitation{}).
		Where("shortlist_id = ? AND invitee_id = ?", shortlist.ID, invitee).
		Count(&count)
	require.EqualValues(t, 1, count)

	var invitation models.ShortlistInvitation
	require.NoError(t, storage.DB.
		Where("shortlist_id = ? AND invitee_id = ?", shortlist.ID, invitee).
		First(&invitation).Error)
	require.Equal(t, models.InvitationStatusPending, invitation.Status)
}

func TestRejectedInvitationIsResurrectedNotDuplicated(t *testing.T) {
	app := buildTestApp(t)

	owner := createTestUser(t, "owner", models.BadgeSeeker)
	invitee := createTestUser(t, "carol", models.BadgeSeeker)
	ownerToken := signTestToken(t, owner, models.BadgeSeeker)
	inviteeToken := signTestToken(t, invitee, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPost, "/api/shortlist/", ownerToken, map[string]string{"name": "Paris Flats"})
	require.Equal(t, http.StatusOK, resp.Code)
	var shortlist models.Shortlist
	require.NoError(t, storage.DB.First(&shortlist).Error)

	invitePath := fmt.Sprintf("/api/shortlist/%d/invitations", shortlist.ID)
	resp = doJSON(t, app, http.MethodPost, invitePath, ownerToken, map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code)

	// Carol sees a pending invitation naming the shortlist and the inviter
	resp = doJSON(t, app, http.MethodGet, "/api/invitation/", inviteeToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeBody(t, resp)
	invitations := body["invitations"].([]interface{})
	require.Len(t, invitations, 1)
	first := invitations[0].(map[string]interface{})
	require.Equal(t, "Paris Flats", first["shortlist"].(map[string]interface{})["name"])
	require.Equal(t, "owner", first["inviter"].(map[string]interface{})["firstName"])

	var invitation models.ShortlistInvitation
	require.NoError(t, storage.DB.
		Where("shortlist_id = ? AND invitee_id = ?", shortlist.ID, invitee).
		First(&invitation).Error)

	// Carol rejects
	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/invitation/%d/respond", invitation.ID), inviteeToken,
		map[string]bool{"accept": false})
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, storage.DB.First(&invitation, invitation.ID).Error)
	require.Equal(t, models.InvitationStatusRejected, invitation.Status)

	// Re-invite flips the same row back to pending
	resp = doJSON(t, app, http.MethodPost, invitePath, ownerToken, map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code)

	var count int64
	storage.DB.Model(&models.ShortlistInvitation{}).
		Where("shortlist_id = ? AND invitee_id = ?", shortlist.ID, invitee).
		Count(&count)
	require.EqualValues(t, 1, count)

	var resurrected models.ShortlistInvitation
	require.NoError(t, storage.DB.
		Where("shortlist_id = ? AND invitee_id = ?", shortlist.ID, invitee).
		First(&resurrected).Error)
	require.Equal(t, invitation.ID, resurrected.ID)
	require.Equal(t, models.InvitationStatusPending, resurrected.Status)
}

func TestAcceptInvitationCreatesMembershipAtomically(t *testing.T) {
	app := buildTestApp(t)

	owner := createTestUser(t, "owner", models.BadgeSeeker)
	invitee := createTestUser(t, "carol", models.BadgeSeeker)
	ownerToken := signTestToken(t, owner, models.BadgeSeeker)
	inviteeToken := signTestToken(t, invitee, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPost, "/api/shortlist/", ownerToken, map[string]string{"name": "Paris Flats"})
	require.Equal(t, http.StatusOK, resp.Code)
	var shortlist models.Shortlist
	require.NoError(t, storage.DB.First(&shortlist).Error)

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/shortlist/%d/invitations", shortlist.ID), ownerToken,
		map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code)

	var invitation models.ShortlistInvitation
	require.NoError(t, storage.DB.
		Where("shortlist_id = ? AND invitee_id = ?", shortlist.ID, invitee).
		First(&invitation).Error)

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/invitation/%d/respond", invitation.ID), inviteeToken,
		map[string]bool{"accept": true})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Invitation accepted AND membership row present
	require.NoError(t, storage.DB.First(&invitation, invitation.ID).Error)
	require.Equal(t, models.InvitationStatusAccepted, invitation.Status)

	var member models.ShortlistMember
	require.NoError(t, storage.DB.
		Where("shortlist_id = ? AND user_id = ?", shortlist.ID, invitee).
		First(&member).Error)
	require.Equal(t, models.ShortlistRoleMember, member.Role)

	// The new member may now add properties
	propertyID := createTestProperty(t, owner, "Le Marais loft")
	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/shortlist/%d/properties", shortlist.ID), inviteeToken,
		map[string]uint{"propertyID": propertyID})
	require.Equal(t, http.StatusOK, resp.Code)

	// Inviting an existing member is a no-op
	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/shortlist/%d/invitations", shortlist.ID), ownerToken,
		map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, true, decodeBody(t, resp)["alreadyMember"])
}

func TestRespondRestrictedToInvitee(t *testing.T) {
	app := buildTestApp(t)

	owner := createTestUser(t, "owner", models.BadgeSeeker)
	invitee := createTestUser(t, "carol", models.BadgeSeeker)
	mallory := createTestUser(t, "mallory", models.BadgeSeeker)
	ownerToken := signTestToken(t, owner, models.BadgeSeeker)
	malloryToken := signTestToken(t, mallory, models.BadgeSeeker)

	resp := doJSON(t, app, http.MethodPost, "/api/shortlist/", ownerToken, map[string]string{"name": "Paris Flats"})
	require.Equal(t, http.StatusOK, resp.Code)
	var shortlist models.Shortlist
	require.NoError(t, storage.DB.First(&shortlist).Error)

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/shortlist/%d/invitations", shortlist.ID), ownerToken,
		map[string]uint{"inviteeID": invitee})
	require.Equal(t, http.StatusOK, resp.Code)

	var invitation models.ShortlistInvitation
	require.NoError(t, storage.DB.First(&invitation).Error)

	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/invitation/%d/respond", invitation.ID), malloryToken,
		map[string]bool{"accept": true})
	require.Equal(t, http.StatusForbidden, resp.Code)

	require.NoError(t, storage.DB.First(&invitation, invitation.ID).Error)
	require.Equal(t, models.InvitationStatusPending, invitation.Status)

	var memberCount int64
	storage.DB.Model(&models.ShortlistMember{}).
		Where("shortlist_id = ? AND user_id = ?", shortlist.ID, mallory).
		Count(&memberCount)
	require.EqualValues(t, 0, memberCount)
}
