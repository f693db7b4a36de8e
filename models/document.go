// models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document review states.
const (
	DocStatusPending  = "PENDING_REVIEW"
	DocStatusApproved = "APPROVED"
	DocStatusRejected = "REJECTED"
	DocStatusExpired  = "EXPIRED"
)

// Critical document types; an expired one blocks the owning user.
var CriticalDocumentTypes = []string{
	"DRIVERS_LICENSE_FRONT",
	"ID_CARD_FRONT",
	"WORK_PERMIT_FRONT",
}

type Document struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	Type        string              `bson:"type" json:"type"`
	Title       string              `bson:"title,omitempty" json:"title,omitempty"`
	FileID      primitive.ObjectID  `bson:"fileId,omitempty" json:"fileId,omitempty"` // GridFS file
	FileName    string              `bson:"fileName,omitempty" json:"fileName,omitempty"`
	ContentType string              `bson:"contentType,omitempty" json:"contentType,omitempty"`
	Status      string              `bson:"status" json:"status"`
	ReviewNotes string              `bson:"reviewNotes,omitempty" json:"reviewNotes,omitempty"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ExpiryDate  *time.Time          `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
