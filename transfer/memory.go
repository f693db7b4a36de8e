// transfer/memory.go
package transfer

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AndersonTREL/TREL-MDM/models"
)

// MemoryStore is an in-process Store used by tests. Transactions are
// serialized by a single mutex and stage their writes in a copy of the
// state, so a failing callback leaves nothing behind.
type MemoryStore struct {
	mu          sync.Mutex
	devices     map[primitive.ObjectID]models.Device
	people      map[primitive.ObjectID]models.Person
	assignments map[primitive.ObjectID]models.Assignment // keyed by device id
	history     []models.AssignmentHistory

	// AppendHistoryErr, when set, fails every AppendHistory call. Lets tests
	// prove the rollback guarantee.
	AppendHistoryErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices:     make(map[primitive.ObjectID]models.Device),
		people:      make(map[primitive.ObjectID]models.Person),
		assignments: make(map[primitive.ObjectID]models.Assignment),
	}
}

func (s *MemoryStore) AddDevice(d models.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.ID] = d
}

func (s *MemoryStore) AddPerson(p models.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[p.ID] = p
}

func (s *MemoryStore) DeviceByID(id primitive.ObjectID) (models.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	return d, ok
}

func (s *MemoryStore) AssignmentForDevice(deviceID primitive.ObjectID) (models.Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[deviceID]
	return a, ok
}

func (s *MemoryStore) History() []models.AssignmentHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AssignmentHistory, len(s.history))
	copy(out, s.history)
	return out
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:       s,
		devices:     cloneMap(s.devices),
		assignments: cloneMap(s.assignments),
		history:     append([]models.AssignmentHistory(nil), s.history...),
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.devices = tx.devices
	s.assignments = tx.assignments
	s.history = tx.history
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memTx struct {
	store       *MemoryStore
	devices     map[primitive.ObjectID]models.Device
	assignments map[primitive.ObjectID]models.Assignment
	history     []models.AssignmentHistory
}

func (t *memTx) Device(ctx context.Context, id primitive.ObjectID) (*models.Device, error) {
	d, ok := t.devices[id]
	if !ok {
		return nil, &NotFoundError{Resource: "device", ID: id.Hex()}
	}
	return &d, nil
}

func (t *memTx) Person(ctx context.Context, id primitive.ObjectID) (*models.Person, error) {
	p, ok := t.store.people[id]
	if !ok {
		return nil, &NotFoundError{Resource: "person", ID: id.Hex()}
	}
	return &p, nil
}

func (t *memTx) CurrentAssignment(ctx context.Context, deviceID primitive.ObjectID) (*models.Assignment, error) {
	a, ok := t.assignments[deviceID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (t *memTx) UpsertAssignment(ctx context.Context, a *models.Assignment) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	t.assignments[a.DeviceID] = *a
	return nil
}

func (t *memTx) DeleteAssignment(ctx context.Context, deviceID primitive.ObjectID) error {
	delete(t.assignments, deviceID)
	return nil
}

func (t *memTx) SetDeviceStatus(ctx context.Context, deviceID primitive.ObjectID, status string) error {
	d, ok := t.devices[deviceID]
	if !ok {
		return &NotFoundError{Resource: "device", ID: deviceID.Hex()}
	}
	d.Status = status
	t.devices[deviceID] = d
	return nil
}

func (t *memTx) AppendHistory(ctx context.Context, h *models.AssignmentHistory) error {
	if t.store.AppendHistoryErr != nil {
		return &StorageError{Err: t.store.AppendHistoryErr}
	}
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	t.history = append(t.history, *h)
	return nil
}
