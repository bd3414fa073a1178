package routes

import (
	"net/http"

	"propel-server/models"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

type CreateInvitationInput struct {
	InviteeID uint `json:"inviteeID" validate:"required"`
}

// CreateShortlistInvitation invites a user to a shortlist. Any member may
// invite. At most one invitation row exists per (shortlist, invitee):
//   - no row        -> create pending
//   - rejected row  -> flip the same row back to pending
//   - pending row   -> no-op
//   - accepted row  -> no-op (already a member)
func CreateShortlistInvitation(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	shortlistID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input CreateInvitationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	shortlist, _, memberErr := shortlistForMember(shortlistID, userToken.ID)
	if memberErr != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Shortlist not found"})
		return
	}

	var invitee models.User
	if err := storage.DB.First(&invitee, input.InviteeID).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"error": "Invitee not found"})
		return
	}

	// Already a member: nothing to invite
	var membership models.ShortlistMember
	if err := storage.DB.
		Where("shortlist_id = ? AND user_id = ?", shortlistID, input.InviteeID).
		First(&membership).Error; err == nil {
		ctx.JSON(iris.Map{"success": true, "alreadyMember": true})
		return
	}

	var invitation models.ShortlistInvitation
	err = storage.DB.
		Where("shortlist_id = ? AND invitee_id = ?", shortlistID, input.InviteeID).
		First(&invitation).Error

	switch {
	case err == nil && invitation.Status == models.InvitationStatusRejected:
		// Re-invite reuses the row, keeping the pair unique
		if err := storage.DB.Model(&invitation).
			Updates(map[string]interface{}{
				"status":     models.InvitationStatusPending,
				"inviter_id": userToken.ID,
			}).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		invitation.Status = models.InvitationStatusPending

	case err == nil:
		// pending or accepted: idempotent no-op
		ctx.JSON(iris.Map{"success": true, "invitation": invitation, "alreadyInvited": true})
		return

	default:
		invitation = models.ShortlistInvitation{
			ShortlistID: shortlistID,
			InviteeID:   input.InviteeID,
			InviterID:   userToken.ID,
			Status:      models.InvitationStatusPending,
		}
		if createErr := storage.DB.Create(&invitation).Error; createErr != nil {
			// Lost a race against a concurrent invite: the unique index kept
			// the pair single, so report the surviving row as already-invited.
			if err := storage.DB.
				Where("shortlist_id = ? AND invitee_id = ?", shortlistID, input.InviteeID).
				First(&invitation).Error; err == nil {
				ctx.JSON(iris.Map{"success": true, "invitation": invitation, "alreadyInvited": true})
				return
			}
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	notifier.Notify(input.InviteeID, userToken.ID, models.NotificationTypeShortlistInvite,
		"invited you to the shortlist \""+shortlist.Name+"\"", "shortlist", &shortlist.ID)

	ctx.JSON(iris.Map{"success": true, "invitation": invitation})
}

// ListMyInvitations returns the caller's pending invitations with the
// shortlist and inviter preloaded, so the UI can name both.
func ListMyInvitations(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var invitations []models.ShortlistInvitation
	storage.DB.
		Preload("Shortlist").
		Preload("Inviter").
		Where("invitee_id = ? AND status = ?", userToken.ID, models.InvitationStatusPending).
		Order("created_at DESC").
		Find(&invitations)

	ctx.JSON(iris.Map{"success": true, "invitations": invitations})
}

type RespondInvitationInput struct {
	Accept bool `json:"accept"`
}

// RespondToInvitation lets the invitee accept or reject. Accepting writes the
// status change and the membership row in one transaction, so an accepted
// invitation can never exist without its membership.
func RespondToInvitation(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	invitationID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var input RespondInvitationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var invitation models.ShortlistInvitation
	if err := storage.DB.First(&invitation, invitationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if invitation.InviteeID != userToken.ID {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	if invitation.Status != models.InvitationStatusPending {
		ctx.JSON(iris.Map{"success": true, "invitation": invitation, "alreadyResponded": true})
		return
	}

	if !input.Accept {
		if err := storage.DB.Model(&invitation).
			Updates(map[string]interface{}{"status": models.InvitationStatusRejected}).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		invitation.Status = models.InvitationStatusRejected
		ctx.JSON(iris.Map{"success": true, "invitation": invitation})
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitation).
			Updates(map[string]interface{}{"status": models.InvitationStatusAccepted}).Error; err != nil {
			return err
		}
		member := models.ShortlistMember{
			ShortlistID: invitation.ShortlistID,
			UserID:      userToken.ID,
			Role:        models.ShortlistRoleMember,
		}
		return tx.Where("shortlist_id = ? AND user_id = ?", invitation.ShortlistID, userToken.ID).
			FirstOrCreate(&member).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	invitation.Status = models.InvitationStatusAccepted

	notifier.Notify(invitation.InviterID, userToken.ID, models.NotificationTypeShortlistInvite,
		"accepted your shortlist invitation", "shortlist", &invitation.ShortlistID)

	ctx.JSON(iris.Map{"success": true, "invitation": invitation})
}
