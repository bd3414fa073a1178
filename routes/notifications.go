package routes

import (
	"fmt"
	"net/http"

	"propel-server/models"
	"propel-server/services"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	limit := ctx.URLParamIntDefault("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	notifications := []models.Notification{}
	storage.DB.
		Preload("Actor").
		Where("recipient_id = ?", claims.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications)

	ctx.JSON(iris.Map{"success": true, "notifications": notifications})
}

// UnreadCount returns how many notifications the caller has not read.
func UnreadCount(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var count int64
	storage.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", claims.ID, false).
		Count(&count)

	ctx.JSON(iris.Map{"success": true, "count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)
	notificationID, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithStatus(http.StatusBadRequest)
		return
	}

	result := storage.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, claims.ID).
		Update("is_read", true)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// MarkAllNotificationsRead marks everything for the caller.
func MarkAllNotificationsRead(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	if err := storage.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", claims.ID, false).
		Update("is_read", true).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

type NotificationSettingsInput struct {
	AllowsNotifications bool `json:"allowsNotifications"`
}

// UpdateNotificationSettings toggles realtime delivery for the caller.
func UpdateNotificationSettings(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var input NotificationSettingsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := storage.DB.Model(&models.User{}).
		Where("id = ?", claims.ID).
		Update("allows_notifications", input.AllowsNotifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "allowsNotifications": input.AllowsNotifications})
}

// StreamNotifications is a server-sent-events subscription to the caller's
// notification channel. Each event carries the notification row's JSON with
// its ID, so clients that reconnect can drop rows they already rendered.
func StreamNotifications(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	if storage.Redis == nil {
		ctx.StopWithStatus(http.StatusServiceUnavailable)
		return
	}

	ctx.ContentType("text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")

	flusher, ok := ctx.ResponseWriter().Naive().(http.Flusher)
	if !ok {
		ctx.StopWithStatus(http.StatusInternalServerError)
		return
	}

	reqCtx := ctx.Request().Context()
	pubsub := storage.Redis.Subscribe(reqCtx, services.NotificationChannel(claims.ID))
	defer pubsub.Close()

	fmt.Fprintf(ctx.ResponseWriter(), ": connected\n\n")
	flusher.Flush()

	channel := pubsub.Channel()
	for {
		select {
		case <-reqCtx.Done():
			return
		case msg, open := <-channel:
			if !open {
				return
			}
			fmt.Fprintf(ctx.ResponseWriter(), "event: notification\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
