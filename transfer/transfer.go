// Package transfer implements the device ownership transfer workflow: the
// one place where the live assignment, the device status and the append-only
// assignment history change together, atomically.
package transfer

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AndersonTREL/TREL-MDM/models"
)

// ReasonRepair is the history reason recorded for repair transfers.
const ReasonRepair = "Sent to Repair"

type targetKind int

const (
	targetAssign targetKind = iota
	targetRepair
	targetStock
)

// Target says where a device is going: to a person, to repair, or back to
// stock. The zero value returns the device to stock.
type Target struct {
	kind     targetKind
	personID primitive.ObjectID
}

func AssignTo(personID primitive.ObjectID) Target {
	return Target{kind: targetAssign, personID: personID}
}

func SendToRepair() Target { return Target{kind: targetRepair} }

func ReturnToStock() Target { return Target{kind: targetStock} }

// ParseTarget converts the wire value of newOwnerId into a Target. The admin
// UI sends a person id, the literal "REPAIR", or an empty value.
func ParseTarget(newOwnerID string) (Target, error) {
	switch newOwnerID {
	case "":
		return ReturnToStock(), nil
	case "REPAIR":
		return SendToRepair(), nil
	default:
		id, err := primitive.ObjectIDFromHex(newOwnerID)
		if err != nil {
			return Target{}, &ValidationError{Msg: "invalid newOwnerId: " + newOwnerID}
		}
		return AssignTo(id), nil
	}
}

// Request describes one transfer.
type Request struct {
	DeviceID  primitive.ObjectID
	Target    Target
	Notes     string
	ActorName string
}

// Tx is the set of storage operations a transfer needs. All of them run
// inside the transaction opened by Store.WithTransaction.
type Tx interface {
	Device(ctx context.Context, id primitive.ObjectID) (*models.Device, error)
	Person(ctx context.Context, id primitive.ObjectID) (*models.Person, error)
	// CurrentAssignment returns (nil, nil) when the device is unassigned.
	CurrentAssignment(ctx context.Context, deviceID primitive.ObjectID) (*models.Assignment, error)
	UpsertAssignment(ctx context.Context, a *models.Assignment) error
	DeleteAssignment(ctx context.Context, deviceID primitive.ObjectID) error
	SetDeviceStatus(ctx context.Context, deviceID primitive.ObjectID, status string) error
	AppendHistory(ctx context.Context, h *models.AssignmentHistory) error
}

// Store opens transactions. Implementations must serialize concurrent
// transactions touching the same device so the read-modify-write below
// cannot interleave.
type Store interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Workflow struct {
	store Store
	now   func() time.Time
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{store: store, now: time.Now}
}

// Transfer applies one ownership change and returns the history row it
// appended. Either all three effects (assignment, device status, history)
// commit or none do.
func (w *Workflow) Transfer(ctx context.Context, req Request) (*models.AssignmentHistory, error) {
	if strings.TrimSpace(req.ActorName) == "" {
		return nil, &ValidationError{Msg: "adminName is required"}
	}

	var hist *models.AssignmentHistory

	err := w.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Device(ctx, req.DeviceID); err != nil {
			return err
		}

		// The prior owner must be read before any mutation, inside the same
		// transaction, or a concurrent transfer could make fromPersonId stale.
		current, err := tx.CurrentAssignment(ctx, req.DeviceID)
		if err != nil {
			return err
		}

		var fromID *primitive.ObjectID
		if current != nil {
			id := current.PersonID
			fromID = &id
		}

		now := w.now()
		h := &models.AssignmentHistory{
			DeviceID:      req.DeviceID,
			FromPersonID:  fromID,
			TransferredBy: req.ActorName,
			Reason:        req.Notes,
			Notes:         req.Notes,
			TransferredAt: now,
		}

		switch req.Target.kind {
		case targetAssign:
			if _, err := tx.Person(ctx, req.Target.personID); err != nil {
				return err
			}
			if err := tx.UpsertAssignment(ctx, &models.Assignment{
				DeviceID:   req.DeviceID,
				PersonID:   req.Target.personID,
				AssignedAt: now,
				Notes:      req.Notes,
			}); err != nil {
				return err
			}
			if err := tx.SetDeviceStatus(ctx, req.DeviceID, models.DeviceStatusAssigned); err != nil {
				return err
			}
			pid := req.Target.personID
			h.ToPersonID = &pid

		case targetRepair:
			if current != nil {
				if err := tx.DeleteAssignment(ctx, req.DeviceID); err != nil {
					return err
				}
			}
			if err := tx.SetDeviceStatus(ctx, req.DeviceID, models.DeviceStatusInRepair); err != nil {
				return err
			}
			h.Reason = ReasonRepair

		case targetStock:
			if current != nil {
				if err := tx.DeleteAssignment(ctx, req.DeviceID); err != nil {
					return err
				}
			}
			if err := tx.SetDeviceStatus(ctx, req.DeviceID, models.DeviceStatusInStock); err != nil {
				return err
			}
		}

		if err := tx.AppendHistory(ctx, h); err != nil {
			return err
		}

		hist = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hist, nil
}
