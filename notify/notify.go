// Package notify persists notification rows and hands them to the
// configured delivery channels. Delivery failures are logged and never
// propagate: notifications must not break the operation that triggered them.
package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AndersonTREL/TREL-MDM/models"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// LogEmailSender is the default when no provider is configured: it logs the
// message instead of delivering it.
type LogEmailSender struct{}

func (LogEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	log.Printf("[EMAIL STUB] to=%s subject=%q", to, subject)
	return nil
}

type LogSMSSender struct{}

func (LogSMSSender) SendSMS(ctx context.Context, to, body string) error {
	log.Printf("[SMS STUB] to=%s", to)
	return nil
}

type Message struct {
	UserID   primitive.ObjectID
	Channel  string // IN_APP, EMAIL, SMS
	Template string
	Subject  string
	Body     string
	Metadata bson.M
}

type Service struct {
	db    *mongo.Database
	email EmailSender
	sms   SMSSender
}

func NewService(db *mongo.Database, email EmailSender, sms SMSSender) *Service {
	if email == nil {
		email = LogEmailSender{}
	}
	if sms == nil {
		sms = LogSMSSender{}
	}
	return &Service{db: db, email: email, sms: sms}
}

// Send stores the notification and attempts delivery. The stored row is
// returned even when delivery fails; sentAt stays unset in that case.
func (s *Service) Send(ctx context.Context, msg Message) (*models.Notification, error) {
	var user models.User
	err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": msg.UserID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("notification recipient not found")
		}
		return nil, err
	}

	n := &models.Notification{
		UserID:    msg.UserID,
		Channel:   msg.Channel,
		Template:  msg.Template,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Metadata:  msg.Metadata,
		CreatedAt: time.Now(),
	}

	res, err := s.db.Collection("notifications").InsertOne(ctx, n)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = id
	}

	var sendErr error
	switch msg.Channel {
	case models.ChannelEmail:
		if user.Email != "" {
			sendErr = s.email.SendEmail(ctx, user.Email, msg.Subject, msg.Body)
		}
	case models.ChannelSMS:
		if user.Phone != "" {
			sendErr = s.sms.SendSMS(ctx, user.Phone, msg.Body)
		}
	case models.ChannelInApp:
		// Nothing to deliver; the stored row is the notification.
	}

	if sendErr != nil {
		log.Printf("Failed to send notification %s: %v", n.ID.Hex(), sendErr)
		return n, nil
	}

	now := time.Now()
	_, err = s.db.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": n.ID},
		bson.M{"$set": bson.M{"sentAt": now}},
	)
	if err != nil {
		log.Printf("Failed to mark notification %s sent: %v", n.ID.Hex(), err)
		return n, nil
	}
	n.SentAt = &now
	return n, nil
}
