package routes

import (
	"net/http"

	"propel-server/models"
	"propel-server/services"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

var notifier = services.NewNotificationService()

// RequestConnection creates a pending edge from the caller to the target.
// Repeating the request, or requesting someone already connected, is a no-op.
func RequestConnection(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	targetID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}
	if targetID == userToken.ID {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Cannot connect to yourself.", ctx)
		return
	}

	var target models.User
	if err := storage.DB.First(&target, targetID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	// An edge in either direction means the pair already has a relationship
	var existing models.Connection
	if err := storage.DB.
		Where("(user_id = ? AND connected_user_id = ?) OR (user_id = ? AND connected_user_id = ?)",
			userToken.ID, targetID, targetID, userToken.ID).
		First(&existing).Error; err == nil {
		ctx.JSON(iris.Map{"success": true, "connection": existing, "alreadyExists": true})
		return
	}

	connection := models.Connection{
		UserID:          userToken.ID,
		ConnectedUserID: targetID,
		Status:          models.ConnectionStatusPending,
	}
	// FirstOrCreate absorbs the race where two requests land at once
	if err := storage.DB.
		Where("user_id = ? AND connected_user_id = ?", userToken.ID, targetID).
		FirstOrCreate(&connection).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifier.Notify(targetID, userToken.ID, models.NotificationTypeConnectionRequest,
		"sent you a connection request", "connection", &connection.ID)

	ctx.JSON(iris.Map{"success": true, "connection": connection})
}

// AcceptConnection transitions a pending edge to accepted. Only the edge's
// recipient may accept; anyone else gets a 403 no matter what the client UI
// thought it was doing.
func AcceptConnection(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	connectionID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var connection models.Connection
	if err := storage.DB.First(&connection, connectionID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if connection.ConnectedUserID != userToken.ID {
		ctx.StopWithStatus(http.StatusForbidden)
		return
	}

	if connection.Status == models.ConnectionStatusAccepted {
		ctx.JSON(iris.Map{"success": true, "connection": connection})
		return
	}

	if err := storage.DB.Model(&connection).
		Updates(map[string]interface{}{"status": models.ConnectionStatusAccepted}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifier.Notify(connection.UserID, userToken.ID, models.NotificationTypeConnectionAccepted,
		"accepted your connection request", "connection", &connection.ID)

	ctx.JSON(iris.Map{"success": true, "connection": connection})
}

// Disconnect removes the relationship with the given user, whichever side
// created it. Removing a non-existent relationship succeeds.
func Disconnect(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	otherID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	if err := storage.DB.
		Where("(user_id = ? AND connected_user_id = ?) OR (user_id = ? AND connected_user_id = ?)",
			userToken.ID, otherID, otherID, userToken.ID).
		Delete(&models.Connection{}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// GetConnections lists the caller's accepted connections, resolved to the
// profile on the other side of each edge.
func GetConnections(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var accepted []models.Connection
	storage.DB.
		Where("(user_id = ? OR connected_user_id = ?) AND status = ?",
			userToken.ID, userToken.ID, models.ConnectionStatusAccepted).
		Find(&accepted)

	ids := services.ConnectedUserIDs(userToken.ID, accepted)

	profiles := []models.Profile{}
	if len(ids) > 0 {
		storage.DB.Where("user_id IN ?", ids).Find(&profiles)
	}

	ctx.JSON(iris.Map{"success": true, "connections": profiles})
}

// GetPendingConnections lists pending edges touching the caller, split into
// requests they sent and requests awaiting their decision.
func GetPendingConnections(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	var pending []models.Connection
	storage.DB.
		Where("(user_id = ? OR connected_user_id = ?) AND status = ?",
			userToken.ID, userToken.ID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&pending)

	sent := []models.Connection{}
	received := []models.Connection{}
	for _, edge := range pending {
		if edge.UserID == userToken.ID {
			sent = append(sent, edge)
		} else {
			received = append(received, edge)
		}
	}

	ctx.JSON(iris.Map{"success": true, "sent": sent, "received": received})
}

// GetConnectionStatus derives the viewer's status towards a candidate:
// none, pending, received or connected.
func GetConnectionStatus(ctx iris.Context) {
	tok := jsonWT.Get(ctx)
	if tok == nil {
		ctx.StopWithStatus(http.StatusUnauthorized)
		return
	}
	userToken := tok.(*utils.AccessToken)

	candidateID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	var accepted []models.Connection
	storage.DB.
		Where("(user_id = ? OR connected_user_id = ?) AND status = ?",
			userToken.ID, userToken.ID, models.ConnectionStatusAccepted).
		Find(&accepted)

	var pending []models.Connection
	storage.DB.
		Where("(user_id = ? OR connected_user_id = ?) AND status = ?",
			userToken.ID, userToken.ID, models.ConnectionStatusPending).
		Find(&pending)

	status := services.ResolveConnectionStatus(
		userToken.ID, candidateID,
		services.ConnectedUserIDs(userToken.ID, accepted),
		pending)

	ctx.JSON(iris.Map{"success": true, "status": status})
}
