// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Portal roles.
const (
	RoleAdmin     = "ADMIN"
	RoleInspector = "INSPECTOR"
	RoleDriver    = "DRIVER"
)

// Account states. Drivers holding expired critical documents get BLOCKED by
// the expiry sweep.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusBlocked  = "BLOCKED"
	UserStatusArchived = "ARCHIVED"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"`
	Locale       string             `bson:"locale,omitempty" json:"locale,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
