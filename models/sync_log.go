package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncLog records one check-in from the Android driver app.
type SyncLog struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DeviceID  *primitive.ObjectID `bson:"deviceId,omitempty" json:"deviceId,omitempty"`
	Source    string              `bson:"source" json:"source"`
	Status    string              `bson:"status" json:"status"`
	Payload   string              `bson:"payload,omitempty" json:"payload,omitempty"`
	UserID    string              `bson:"userId,omitempty" json:"userId,omitempty"`
	Timestamp time.Time           `bson:"timestamp" json:"timestamp"`
}
