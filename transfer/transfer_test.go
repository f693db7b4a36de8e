package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AndersonTREL/TREL-MDM/models"
)

func newFixture(t *testing.T) (*MemoryStore, *Workflow, models.Device, models.Person, models.Person) {
	t.Helper()

	store := NewMemoryStore()
	device := models.Device{ID: primitive.NewObjectID(), AssetTag: "TAB-001", Status: models.DeviceStatusInStock}
	p1 := models.Person{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	p2 := models.Person{ID: primitive.NewObjectID(), Name: "Bob", Email: "bob@example.com"}
	store.AddDevice(device)
	store.AddPerson(p1)
	store.AddPerson(p2)

	return store, NewWorkflow(store), device, p1, p2
}

func TestTransferAssignFromStock(t *testing.T) {
	store, wf, device, p1, _ := newFixture(t)

	h, err := wf.Transfer(context.Background(), Request{
		DeviceID:  device.ID,
		Target:    AssignTo(p1.ID),
		Notes:     "new starter",
		ActorName: "Admin",
	})
	require.NoError(t, err)

	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusAssigned, d.Status)

	a, ok := store.AssignmentForDevice(device.ID)
	require.True(t, ok)
	assert.Equal(t, p1.ID, a.PersonID)
	assert.Equal(t, "new starter", a.Notes)

	require.Nil(t, h.FromPersonID)
	require.NotNil(t, h.ToPersonID)
	assert.Equal(t, p1.ID, *h.ToPersonID)
	assert.Equal(t, "Admin", h.TransferredBy)
	assert.Len(t, store.History(), 1)
}

func TestTransferToRepair(t *testing.T) {
	store, wf, device, p1, _ := newFixture(t)

	_, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p1.ID), ActorName: "Admin"})
	require.NoError(t, err)

	h, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: SendToRepair(), ActorName: "Admin"})
	require.NoError(t, err)

	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusInRepair, d.Status)

	_, ok := store.AssignmentForDevice(device.ID)
	assert.False(t, ok, "repair must clear the assignment")

	require.NotNil(t, h.FromPersonID)
	assert.Equal(t, p1.ID, *h.FromPersonID)
	assert.Nil(t, h.ToPersonID)
	assert.Equal(t, ReasonRepair, h.Reason)
}

func TestTransferReassign(t *testing.T) {
	store, wf, device, p1, p2 := newFixture(t)

	_, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p1.ID), ActorName: "Admin"})
	require.NoError(t, err)

	h, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p2.ID), ActorName: "Admin"})
	require.NoError(t, err)

	a, ok := store.AssignmentForDevice(device.ID)
	require.True(t, ok)
	assert.Equal(t, p2.ID, a.PersonID)

	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusAssigned, d.Status)

	require.NotNil(t, h.FromPersonID)
	require.NotNil(t, h.ToPersonID)
	assert.Equal(t, p1.ID, *h.FromPersonID)
	assert.Equal(t, p2.ID, *h.ToPersonID)
	assert.Len(t, store.History(), 2)
}

func TestTransferMissingActorName(t *testing.T) {
	store, wf, device, p1, _ := newFixture(t)

	_, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p1.ID), ActorName: "   "})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusInStock, d.Status)
	assert.Empty(t, store.History())
}

func TestTransferUnknownDevice(t *testing.T) {
	_, wf, _, p1, _ := newFixture(t)

	_, err := wf.Transfer(context.Background(), Request{DeviceID: primitive.NewObjectID(), Target: AssignTo(p1.ID), ActorName: "Admin"})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "device", nf.Resource)
}

func TestTransferUnknownPersonLeavesNoPartialState(t *testing.T) {
	store, wf, device, _, _ := newFixture(t)

	_, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(primitive.NewObjectID()), ActorName: "Admin"})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "person", nf.Resource)

	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusInStock, d.Status)
	_, ok := store.AssignmentForDevice(device.ID)
	assert.False(t, ok)
	assert.Empty(t, store.History())
}

func TestReturnToStockWhenAlreadyUnassigned(t *testing.T) {
	store, wf, device, _, _ := newFixture(t)

	h, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: ReturnToStock(), ActorName: "Admin"})
	require.NoError(t, err)

	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusInStock, d.Status)

	// A no-op on the assignment still leaves an audit trail.
	assert.Nil(t, h.FromPersonID)
	assert.Nil(t, h.ToPersonID)
	assert.Len(t, store.History(), 1)
}

func TestTransferRollbackOnHistoryFailure(t *testing.T) {
	store, wf, device, p1, _ := newFixture(t)
	store.AppendHistoryErr = errors.New("disk full")

	_, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p1.ID), ActorName: "Admin"})

	var se *StorageError
	require.ErrorAs(t, err, &se)

	// Nothing may stick: no assignment, status untouched, no history.
	d, _ := store.DeviceByID(device.ID)
	assert.Equal(t, models.DeviceStatusInStock, d.Status)
	_, ok := store.AssignmentForDevice(device.ID)
	assert.False(t, ok)
	assert.Empty(t, store.History())
}

func TestConcurrentTransfersNoLostUpdate(t *testing.T) {
	store, wf, device, _, _ := newFixture(t)

	const n = 16
	people := make([]models.Person, n)
	for i := range people {
		people[i] = models.Person{ID: primitive.NewObjectID(), Name: fmt.Sprintf("P%d", i)}
		store.AddPerson(people[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(p models.Person) {
			defer wg.Done()
			_, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p.ID), ActorName: "Admin"})
			assert.NoError(t, err)
		}(people[i])
	}
	wg.Wait()

	history := store.History()
	require.Len(t, history, n)

	// Every fromPersonId must be distinct: two rows claiming the same prior
	// owner would mean a lost update.
	seen := make(map[string]bool)
	nilFroms := 0
	for _, h := range history {
		if h.FromPersonID == nil {
			nilFroms++
			continue
		}
		key := h.FromPersonID.Hex()
		assert.False(t, seen[key], "duplicate fromPersonId %s", key)
		seen[key] = true
	}
	assert.Equal(t, 1, nilFroms, "exactly one transfer should start from the unassigned state")

	// The chain ends at whoever currently holds the device.
	a, ok := store.AssignmentForDevice(device.ID)
	require.True(t, ok)
	assert.False(t, seen[a.PersonID.Hex()], "the current owner cannot also appear as a prior owner")
}

func TestParseTarget(t *testing.T) {
	id := primitive.NewObjectID()

	cases := []struct {
		name string
		in   string
		want Target
		err  bool
	}{
		{"Empty", "", ReturnToStock(), false},
		{"Repair", "REPAIR", SendToRepair(), false},
		{"PersonID", id.Hex(), AssignTo(id), false},
		{"Garbage", "not-an-id", Target{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTarget(tc.in)
			if tc.err {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransferNotesBecomeReasonExceptRepair(t *testing.T) {
	store, wf, device, p1, _ := newFixture(t)

	h, err := wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: AssignTo(p1.ID), Notes: "quarterly rotation", ActorName: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "quarterly rotation", h.Reason)

	h, err = wf.Transfer(context.Background(), Request{DeviceID: device.ID, Target: SendToRepair(), Notes: "cracked screen", ActorName: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, ReasonRepair, h.Reason)
	assert.Equal(t, "cracked screen", h.Notes)

	assert.Len(t, store.History(), 2)
}
