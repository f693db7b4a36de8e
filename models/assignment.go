// models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment is the live (device → person) binding. At most one per device;
// deviceId carries a unique index.
type Assignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeviceID   primitive.ObjectID `bson:"deviceId" json:"deviceId"`
	PersonID   primitive.ObjectID `bson:"personId" json:"personId"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

type AssignmentWithPerson struct {
	Assignment `bson:",inline"`
	Person     *Person `json:"person,omitempty"`
}

type AssignmentWithDevice struct {
	Assignment `bson:",inline"`
	Device     *Device `json:"device,omitempty"`
}

// AssignmentHistory is append-only. Rows are never updated or deleted; they
// are the audit trail of every ownership change.
type AssignmentHistory struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DeviceID      primitive.ObjectID  `bson:"deviceId" json:"deviceId"`
	FromPersonID  *primitive.ObjectID `bson:"fromPersonId,omitempty" json:"fromPersonId,omitempty"`
	ToPersonID    *primitive.ObjectID `bson:"toPersonId,omitempty" json:"toPersonId,omitempty"`
	TransferredBy string              `bson:"transferredBy" json:"transferredBy"`
	Reason        string              `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	TransferredAt time.Time           `bson:"transferredAt" json:"transferredAt"`
}

type HistoryWithPeople struct {
	AssignmentHistory `bson:",inline"`
	FromPerson        *Person `json:"fromPerson,omitempty"`
	ToPerson          *Person `json:"toPerson,omitempty"`
}
