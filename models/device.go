// models/device.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device lifecycle states. Wire values match what the admin UI and the
// Android agent already send.
const (
	DeviceStatusInStock  = "In Stock"
	DeviceStatusAssigned = "Assigned"
	DeviceStatusInRepair = "In Repair"
	DeviceStatusLost     = "Lost"
)

type Device struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetTag       string             `bson:"assetTag" json:"assetTag"`
	SerialNumber   string             `bson:"serialNumber,omitempty" json:"serialNumber,omitempty"`
	IMEI           string             `bson:"imei,omitempty" json:"imei,omitempty"`
	Platform       string             `bson:"platform,omitempty" json:"platform,omitempty"`
	Manufacturer   string             `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Model          string             `bson:"model,omitempty" json:"model,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AndroidVersion string             `bson:"androidVersion,omitempty" json:"androidVersion,omitempty"`
	SecurityPatch  string             `bson:"securityPatch,omitempty" json:"securityPatch,omitempty"`
	AppVersion     string             `bson:"appVersion,omitempty" json:"appVersion,omitempty"`
	LastSyncAt     *time.Time         `bson:"lastSyncAt,omitempty" json:"lastSyncAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DeviceDetail is the device fetch payload: the device plus its live
// assignment, recent history and recent sync logs.
type DeviceDetail struct {
	Device     `bson:",inline"`
	Assignment *AssignmentWithPerson `json:"assignment,omitempty"`
	History    []HistoryWithPeople   `json:"history"`
	SyncLogs   []SyncLog             `json:"syncLogs"`
}
