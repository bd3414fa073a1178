package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"propel-server/models"
	"propel-server/storage"
)

// NotificationService persists notifications and pushes them to the
// recipient's realtime channel.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationChannel is the Redis pub/sub channel a user's clients subscribe
// to for realtime delivery.
func NotificationChannel(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// Notify stores a notification row and publishes it. Recipients who turned
// notifications off still get the row (for the in-app list) but no publish.
// Failures are logged, never propagated: a missed notification must not fail
// the mutation that caused it.
func (ns *NotificationService) Notify(recipientID, actorID uint, notifType, message, referenceType string, referenceID *uint) {
	if recipientID == 0 || recipientID == actorID {
		return
	}

	notification := models.Notification{
		Type:          notifType,
		ActorID:       actorID,
		RecipientID:   recipientID,
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		Message:       message,
	}

	if err := storage.DB.Create(&notification).Error; err != nil {
		log.Printf("notify: failed to store notification for user %d: %v", recipientID, err)
		return
	}

	ns.publish(notification)
}

func (ns *NotificationService) publish(notification models.Notification) {
	if storage.Redis == nil {
		return
	}

	var recipient models.User
	if err := storage.DB.Select("id, allows_notifications").First(&recipient, notification.RecipientID).Error; err == nil {
		if recipient.AllowsNotifications != nil && !*recipient.AllowsNotifications {
			return
		}
	}

	payload, err := json.Marshal(&notification)
	if err != nil {
		log.Printf("notify: marshal failed: %v", err)
		return
	}

	if err := storage.Redis.Publish(context.Background(), NotificationChannel(notification.RecipientID), payload).Err(); err != nil {
		log.Printf("notify: publish failed for user %d: %v", notification.RecipientID, err)
	}
}
