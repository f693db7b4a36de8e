// handlers/audit_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

// RecordAudit appends an audit row. Failures are logged and swallowed:
// audit logging must never break the operation it records.
func RecordAudit(ctx context.Context, entry models.AuditLog) {
	entry.CreatedAt = time.Now()
	if entry.Diff != nil {
		redacted := utils.RedactPII(map[string]interface{}(entry.Diff))
		entry.Diff = bson.M(redacted)
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := auditCollection.InsertOne(writeCtx, entry); err != nil {
		log.Printf("Failed to create audit log (%s %s): %v", entry.Action, entry.Entity, err)
	}
}

// auditFromRequest fills the actor/request fields from context and headers.
func auditFromRequest(r *http.Request, action, entity, entityID string, diff bson.M) models.AuditLog {
	actorID, _ := r.Context().Value("userID").(string)
	return models.AuditLog{
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Diff:      diff,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// ListAuditLogs returns audit rows, most recent first.
func ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit := int64(100)
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	filter := bson.M{}
	if action := r.URL.Query().Get("action"); action != "" {
		filter["action"] = action
	}
	if entity := r.URL.Query().Get("entity"); entity != "" {
		filter["entity"] = entity
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := auditCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("audit Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode audit logs")
		return
	}

	if logs == nil {
		logs = []models.AuditLog{}
	}

	utils.RespondWithJSON(w, http.StatusOK, logs)
}

// GetAuditStats returns per-action counts over the last 30 days.
func GetAuditStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	since := time.Now().AddDate(0, 0, -30)

	pipeline := []bson.M{
		{"$match": bson.M{"createdAt": bson.M{"$gte": since}}},
		{"$group": bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := auditCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("audit stats aggregate error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}
	defer cursor.Close(ctx)

	var stats []bson.M
	if err = cursor.All(ctx, &stats); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode stats")
		return
	}

	if stats == nil {
		stats = []bson.M{}
	}

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"since": since, "actions": stats})
}
