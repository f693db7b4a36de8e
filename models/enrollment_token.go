package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentToken is a one-shot code handed to a device for enrollment.
type EnrollmentToken struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Token     string              `bson:"token" json:"token"`
	DeviceID  *primitive.ObjectID `bson:"deviceId,omitempty" json:"deviceId,omitempty"`
	CreatedBy string              `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	ExpiresAt time.Time           `bson:"expiresAt" json:"expiresAt"`
	UsedAt    *time.Time          `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
