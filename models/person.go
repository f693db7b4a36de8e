package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Person struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"` // Employee, Manager, Admin
	Station   string             `bson:"station,omitempty" json:"station,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PersonWithAssignment is the people list payload including the device the
// person currently holds, if any.
type PersonWithAssignment struct {
	Person     `bson:",inline"`
	Assignment *AssignmentWithDevice `json:"assignment,omitempty"`
}
