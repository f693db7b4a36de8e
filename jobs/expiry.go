// Package jobs holds the scheduled background work. Jobs run after-the-fact
// against committed data; they never sit inside a request transaction.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/notify"
)

// ReminderWindows are the days-before-expiry marks at which owners get
// reminded.
var ReminderWindows = []int{30, 14, 7, 1}

// DaysUntil reports whole days from now until expiry, truncated.
func DaysUntil(now, expiry time.Time) int {
	return int(expiry.Sub(now).Hours() / 24)
}

// ExpirySweeper finds approved documents nearing or past expiry, reminds
// their owners and the inspectors, and blocks users whose critical documents
// have lapsed.
type ExpirySweeper struct {
	db       *mongo.Database
	notifier *notify.Service
	interval time.Duration
}

func NewExpirySweeper(db *mongo.Database, notifier *notify.Service, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{db: db, notifier: notifier, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	log.Printf("Expiry sweeper started (interval %v)", s.interval)

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) Sweep(ctx context.Context) {
	now := time.Now()

	for _, days := range ReminderWindows {
		if err := s.remindWindow(ctx, now, days); err != nil {
			log.Printf("Expiry sweep: %d-day window failed: %v", days, err)
		}
	}

	if err := s.blockExpiredUsers(ctx, now); err != nil {
		log.Printf("Expiry sweep: blocking expired users failed: %v", err)
	}
}

func (s *ExpirySweeper) remindWindow(ctx context.Context, now time.Time, days int) error {
	target := now.AddDate(0, 0, days)

	cursor, err := s.db.Collection("documents").Find(ctx, bson.M{
		"status":     models.DocStatusApproved,
		"expiryDate": bson.M{"$gte": now, "$lte": target},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}

	if len(docs) == 0 {
		return nil
	}

	inspectors, err := s.activeInspectors(ctx)
	if err != nil {
		log.Printf("Expiry sweep: inspector lookup failed: %v", err)
	}

	for _, doc := range docs {
		left := DaysUntil(now, *doc.ExpiryDate)

		_, err := s.notifier.Send(ctx, notify.Message{
			UserID:   doc.UserID,
			Channel:  models.ChannelEmail,
			Template: "document_expiry_reminder",
			Subject:  "Document expiring soon",
			Body:     fmt.Sprintf("Your document %s expires in %d days. Please upload a renewed version.", doc.Type, left),
			Metadata: bson.M{"documentId": doc.ID.Hex(), "daysLeft": left},
		})
		if err != nil {
			log.Printf("Expiry sweep: reminder for document %s failed: %v", doc.ID.Hex(), err)
		}

		for _, inspector := range inspectors {
			_, err := s.notifier.Send(ctx, notify.Message{
				UserID:   inspector.ID,
				Channel:  models.ChannelInApp,
				Template: "document_expiring",
				Body:     fmt.Sprintf("Document %s for user %s expires in %d days", doc.Type, doc.UserID.Hex(), left),
				Metadata: bson.M{"documentId": doc.ID.Hex()},
			})
			if err != nil {
				log.Printf("Expiry sweep: inspector notice failed: %v", err)
			}
		}
	}

	log.Printf("Expiry sweep: %d-day window checked %d documents", days, len(docs))
	return nil
}

func (s *ExpirySweeper) activeInspectors(ctx context.Context) ([]models.User, error) {
	cursor, err := s.db.Collection("users").Find(ctx, bson.M{
		"role":   models.RoleInspector,
		"status": models.UserStatusActive,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// blockExpiredUsers flips users to BLOCKED when one of their critical
// documents is approved but past its expiry date.
func (s *ExpirySweeper) blockExpiredUsers(ctx context.Context, now time.Time) error {
	userIDs, err := s.db.Collection("documents").Distinct(ctx, "userId", bson.M{
		"status":     models.DocStatusApproved,
		"expiryDate": bson.M{"$lt": now},
		"type":       bson.M{"$in": models.CriticalDocumentTypes},
	})
	if err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(userIDs))
	for _, raw := range userIDs {
		if id, ok := raw.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}

	res, err := s.db.Collection("users").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": models.UserStatusBlocked, "updatedAt": now}},
	)
	if err != nil {
		return err
	}

	if res.ModifiedCount > 0 {
		log.Printf("Expiry sweep: blocked %d users with expired critical documents", res.ModifiedCount)
	}
	return nil
}
