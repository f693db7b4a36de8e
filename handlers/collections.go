// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"github.com/AndersonTREL/TREL-MDM/compliance"
	"github.com/AndersonTREL/TREL-MDM/database"
	"github.com/AndersonTREL/TREL-MDM/notify"
	"github.com/AndersonTREL/TREL-MDM/transfer"
)

var (
	deviceCollection       *mongo.Collection
	personCollection       *mongo.Collection
	assignmentCollection   *mongo.Collection
	historyCollection      *mongo.Collection
	syncLogCollection      *mongo.Collection
	enrollTokenCollection  *mongo.Collection
	userCollection         *mongo.Collection
	documentCollection     *mongo.Collection
	courseCollection       *mongo.Collection
	enrollmentCollection   *mongo.Collection
	attemptCollection      *mongo.Collection
	notificationCollection *mongo.Collection
	auditCollection        *mongo.Collection

	documentBucket *gridfs.Bucket

	transferWorkflow *transfer.Workflow
	complianceRules  *compliance.Rules
	notifier         *notify.Service
)

// InitCollections wires the package-level handles. Called once from main
// after the database connection is up.
func InitCollections(rules *compliance.Rules, n *notify.Service) error {
	db := database.DB()

	deviceCollection = db.Collection("devices")
	personCollection = db.Collection("people")
	assignmentCollection = db.Collection("assignments")
	historyCollection = db.Collection("assignment_history")
	syncLogCollection = db.Collection("sync_logs")
	enrollTokenCollection = db.Collection("enrollment_tokens")
	userCollection = db.Collection("users")
	documentCollection = db.Collection("documents")
	courseCollection = db.Collection("courses")
	enrollmentCollection = db.Collection("enrollments")
	attemptCollection = db.Collection("quiz_attempts")
	notificationCollection = db.Collection("notifications")
	auditCollection = db.Collection("audit_logs")

	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return err
	}
	documentBucket = bucket

	transferWorkflow = transfer.NewWorkflow(transfer.NewMongoStore(database.Client, db))
	complianceRules = rules
	notifier = n
	return nil
}
