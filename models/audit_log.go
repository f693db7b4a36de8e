// models/audit_log.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   string             `bson:"actorId" json:"actorId"`
	Action    string             `bson:"action" json:"action"` // e.g. "APPROVE_DOCUMENT", "LOGIN", "DEVICE_TRANSFER"
	Entity    string             `bson:"entity" json:"entity"`
	EntityID  string             `bson:"entityId,omitempty" json:"entityId,omitempty"`
	Diff      bson.M             `bson:"diff,omitempty" json:"diff,omitempty"`
	IPAddress string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
