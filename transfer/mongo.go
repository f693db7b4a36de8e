// transfer/mongo.go
package transfer

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/models"
)

// MongoStore runs transfers inside a mongo session transaction. Same-device
// races surface as write conflicts on the unique assignments.deviceId index
// and come back as ConflictError.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return &StorageError{Err: err}
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{db: s.db})
	})
	if err != nil {
		// Workflow errors pass through untouched.
		var ve *ValidationError
		var nf *NotFoundError
		var ce *ConflictError
		var se *StorageError
		if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &se) {
			return err
		}
		if mongo.IsDuplicateKeyError(err) {
			return &ConflictError{Err: err}
		}
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
			return &ConflictError{Err: err}
		}
		return &StorageError{Err: err}
	}
	return nil
}

type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) Device(ctx context.Context, id primitive.ObjectID) (*models.Device, error) {
	var d models.Device
	err := t.db.Collection("devices").FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, &NotFoundError{Resource: "device", ID: id.Hex()}
	}
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return &d, nil
}

func (t *mongoTx) Person(ctx context.Context, id primitive.ObjectID) (*models.Person, error) {
	var p models.Person
	err := t.db.Collection("people").FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, &NotFoundError{Resource: "person", ID: id.Hex()}
	}
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return &p, nil
}

func (t *mongoTx) CurrentAssignment(ctx context.Context, deviceID primitive.ObjectID) (*models.Assignment, error) {
	var a models.Assignment
	err := t.db.Collection("assignments").FindOne(ctx, bson.M{"deviceId": deviceID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return &a, nil
}

func (t *mongoTx) UpsertAssignment(ctx context.Context, a *models.Assignment) error {
	_, err := t.db.Collection("assignments").ReplaceOne(ctx,
		bson.M{"deviceId": a.DeviceID},
		a,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (t *mongoTx) DeleteAssignment(ctx context.Context, deviceID primitive.ObjectID) error {
	_, err := t.db.Collection("assignments").DeleteOne(ctx, bson.M{"deviceId": deviceID})
	return err
}

func (t *mongoTx) SetDeviceStatus(ctx context.Context, deviceID primitive.ObjectID, status string) error {
	_, err := t.db.Collection("devices").UpdateOne(ctx,
		bson.M{"_id": deviceID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	return err
}

func (t *mongoTx) AppendHistory(ctx context.Context, h *models.AssignmentHistory) error {
	res, err := t.db.Collection("assignment_history").InsertOne(ctx, h)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		h.ID = id
	}
	return nil
}
