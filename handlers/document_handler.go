// handlers/document_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/compliance"
	"github.com/AndersonTREL/TREL-MDM/config"
	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/notify"
	"github.com/AndersonTREL/TREL-MDM/utils"
)

func allowedContentTypes(docType string) []string {
	allowed := []string{"image/jpeg", "image/png"}
	if docType == "REGISTRATION_CERTIFICATE" {
		allowed = append(allowed, "application/pdf")
	}
	return allowed
}

// UploadDocument stores the file in GridFS and creates a PENDING_REVIEW
// document record for the caller.
func UploadDocument(w http.ResponseWriter, r *http.Request) {
	userIDStr, _ := r.Context().Value("userID").(string)
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "File size exceeds limit")
		return
	}

	docType := r.FormValue("type")
	if docType == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ok := false
	for _, t := range allowedContentTypes(docType) {
		if t == contentType {
			ok = true
			break
		}
	}
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	var expiry *time.Time
	if s := r.FormValue("expiryDate"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid expiryDate, want YYYY-MM-DD")
			return
		}
		expiry = &parsed
	}

	// Store under a generated key; the original filename is metadata only.
	storageName := fmt.Sprintf("%s/%s%s", userID.Hex(), uuid.NewString(), filepath.Ext(header.Filename))
	fileID, err := documentBucket.UploadFromStream(storageName, file)
	if err != nil {
		log.Printf("GridFS upload error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	now := time.Now()
	doc := models.Document{
		UserID:      userID,
		Type:        docType,
		Title:       r.FormValue("title"),
		FileID:      fileID,
		FileName:    header.Filename,
		ContentType: contentType,
		Status:      models.DocStatusPending,
		ExpiryDate:  expiry,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := documentCollection.InsertOne(ctx, doc)
	if err != nil {
		log.Printf("document insert error: %v", err)
		// Don't leave the uploaded blob orphaned.
		if delErr := documentBucket.Delete(fileID); delErr != nil {
			log.Printf("GridFS cleanup failed for %v: %v", fileID, delErr)
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}

	RecordAudit(ctx, auditFromRequest(r, "UPLOAD_DOCUMENT", "Document", doc.ID.Hex(), bson.M{
		"type":   docType,
		"status": models.DocStatusPending,
	}))

	utils.RespondWithJSON(w, http.StatusCreated, doc)
}

type reviewRequest struct {
	Action string `json:"action"` // APPROVE or REJECT
	Notes  string `json:"notes"`
}

// ReviewDocument approves or rejects a pending document and notifies the
// owner. Notification failure does not fail the review.
func ReviewDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var req reviewRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var newStatus, template, body string
	switch req.Action {
	case "APPROVE":
		newStatus = models.DocStatusApproved
		template = "document_approved"
		body = "Your document was approved."
	case "REJECT":
		newStatus = models.DocStatusRejected
		template = "document_rejected"
		body = "Your document was rejected. Please re-upload a corrected version."
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "action must be APPROVE or REJECT")
		return
	}

	reviewerIDStr, _ := r.Context().Value("userID").(string)
	reviewerID, _ := primitive.ObjectIDFromHex(reviewerIDStr)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	res := documentCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": docID},
		bson.M{"$set": bson.M{
			"status":      newStatus,
			"reviewNotes": req.Notes,
			"reviewedBy":  reviewerID,
			"reviewedAt":  now,
			"updatedAt":   now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var doc models.Document
	if err := res.Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		log.Printf("document review error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to review document")
		return
	}

	action := "APPROVE_DOCUMENT"
	if newStatus == models.DocStatusRejected {
		action = "REJECT_DOCUMENT"
	}
	RecordAudit(ctx, auditFromRequest(r, action, "Document", docID.Hex(), bson.M{"status": newStatus}))

	if _, err := notifier.Send(ctx, notify.Message{
		UserID:   doc.UserID,
		Channel:  models.ChannelEmail,
		Template: template,
		Subject:  "Document review result",
		Body:     fmt.Sprintf("%s (%s)", body, doc.Type),
		Metadata: bson.M{"documentId": doc.ID.Hex()},
	}); err != nil {
		log.Printf("review notification failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// DownloadDocument streams the stored file. Drivers can only fetch their
// own documents; reviewers can fetch any.
func DownloadDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var doc models.Document
	if err := documentCollection.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	role, _ := r.Context().Value("userRole").(string)
	callerID, _ := r.Context().Value("userID").(string)
	if role == models.RoleDriver && doc.UserID.Hex() != callerID {
		utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))

	if _, err := documentBucket.DownloadToStream(doc.FileID, w); err != nil {
		log.Printf("GridFS download error for %s: %v", docID.Hex(), err)
	}
}

// ListDocuments returns documents: a driver sees their own, reviewers can
// filter by userId or see all pending.
func ListDocuments(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value("userRole").(string)
	callerID, _ := r.Context().Value("userID").(string)

	filter := bson.M{}
	if role == models.RoleDriver {
		id, err := primitive.ObjectIDFromHex(callerID)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
			return
		}
		filter["userId"] = id
	} else {
		if s := r.URL.Query().Get("userId"); s != "" {
			id, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid userId")
				return
			}
			filter["userId"] = id
		}
		if status := r.URL.Query().Get("status"); status != "" {
			filter["status"] = status
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := documentCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("documents Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err = cursor.All(ctx, &docs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode documents")
		return
	}

	if docs == nil {
		docs = []models.Document{}
	}
	utils.RespondWithJSON(w, http.StatusOK, docs)
}

// GetUserCompliance runs the compliance calculator over a user's documents.
func GetUserCompliance(w http.ResponseWriter, r *http.Request) {
	targetIDStr := mux.Vars(r)["id"]

	role, _ := r.Context().Value("userRole").(string)
	callerID, _ := r.Context().Value("userID").(string)
	if role == models.RoleDriver && targetIDStr != callerID {
		utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(targetIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	submitted, err := documentsForUser(ctx, targetID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	status := complianceRules.ComplianceStatus(user.Role, submitted)
	missing := complianceRules.MissingDocuments(user.Role, submitted)
	if missing == nil {
		missing = []compliance.RequiredDocument{}
	}

	utils.RespondWithJSON(w, http.StatusOK, bson.M{
		"userId":     targetID.Hex(),
		"role":       user.Role,
		"compliance": status,
		"missing":    missing,
	})
}
