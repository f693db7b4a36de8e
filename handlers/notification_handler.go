// handlers/notification_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

// ListMyNotifications returns the caller's notifications, newest first.
// ?unread=true filters to unread ones.
func ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	userIDStr, _ := r.Context().Value("userID").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	filter := bson.M{"userId": userID}
	if r.URL.Query().Get("unread") == "true" {
		filter["readAt"] = nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := notificationCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("notifications Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	utils.RespondWithJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead stamps readAt on one of the caller's notifications.
// Marking an already-read notification is a no-op success.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	userIDStr, _ := r.Context().Value("userID").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := notificationCollection.UpdateOne(ctx,
		bson.M{"_id": notifID, "userId": userID},
		bson.M{"$set": bson.M{"readAt": time.Now()}},
	)
	if err != nil {
		log.Printf("notification read update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update notification")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "notification not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"success": true})
}
