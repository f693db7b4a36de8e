// handlers/mobile_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AndersonTREL/TREL-MDM/config"
	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
	"github.com/AndersonTREL/TREL-MDM/websocket"
)

type syncRequest struct {
	AssetTag       string `json:"assetTag"`
	SerialNumber   string `json:"serialNumber"`
	Manufacturer   string `json:"manufacturer"`
	Model          string `json:"model"`
	AndroidVersion string `json:"androidVersion"`
	SecurityPatch  string `json:"securityPatch"`
	AppVersion     string `json:"appVersion"`
	Location       string `json:"location"`
	UserID         string `json:"userId"`
}

// SyncDevice is the Android agent check-in: upsert the device by asset tag
// (falling back to serial), refresh the OS/app fields, and always write a
// sync log row with the raw payload.
func SyncDevice(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	now := time.Now()

	var device models.Device
	err := deviceCollection.FindOne(ctx, bson.M{"assetTag": req.AssetTag}).Decode(&device)
	if err == mongo.ErrNoDocuments && req.SerialNumber != "" {
		err = deviceCollection.FindOne(ctx, bson.M{"serialNumber": req.SerialNumber}).Decode(&device)
	}

	var deviceID primitive.ObjectID

	switch err {
	case nil:
		deviceID = device.ID
		set := bson.M{
			"manufacturer":   req.Manufacturer,
			"model":          req.Model,
			"androidVersion": req.AndroidVersion,
			"securityPatch":  req.SecurityPatch,
			"appVersion":     req.AppVersion,
			"lastSyncAt":     now,
			"updatedAt":      now,
		}
		if req.Location != "" {
			set["location"] = req.Location
		}
		if device.SerialNumber == "" && req.SerialNumber != "" {
			set["serialNumber"] = req.SerialNumber
		}
		if _, err := deviceCollection.UpdateOne(ctx, bson.M{"_id": device.ID}, bson.M{"$set": set}); err != nil {
			log.Printf("sync device update error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Sync failed")
			return
		}

	case mongo.ErrNoDocuments:
		newDevice := models.Device{
			AssetTag:       req.AssetTag,
			SerialNumber:   req.SerialNumber,
			Manufacturer:   req.Manufacturer,
			Model:          req.Model,
			Platform:       "Android",
			AndroidVersion: req.AndroidVersion,
			SecurityPatch:  req.SecurityPatch,
			AppVersion:     req.AppVersion,
			Status:         models.DeviceStatusInStock,
			Location:       req.Location,
			LastSyncAt:     &now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		res, err := deviceCollection.InsertOne(ctx, newDevice)
		if err != nil {
			log.Printf("sync device insert error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Sync failed")
			return
		}
		deviceID, _ = res.InsertedID.(primitive.ObjectID)

	default:
		log.Printf("sync device lookup error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	payload, _ := json.Marshal(req)
	syncLog := models.SyncLog{
		DeviceID:  &deviceID,
		Source:    "Android Driver App",
		Status:    "Success",
		Payload:   string(payload),
		UserID:    req.UserID,
		Timestamp: now,
	}
	if _, err := syncLogCollection.InsertOne(ctx, syncLog); err != nil {
		log.Printf("sync log insert failed: %v", err)
	}

	websocket.SendDeviceSynced(deviceID.Hex(), bson.M{"assetTag": req.AssetTag, "appVersion": req.AppVersion})

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"success": true, "deviceId": deviceID.Hex()})
}

type generateTokenRequest struct {
	DeviceID  string `json:"deviceId"`
	ExpiresIn string `json:"expiresIn"` // Go duration, default 24h
}

// GenerateEnrollmentToken mints a one-shot enrollment code (admin action).
func GenerateEnrollmentToken(w http.ResponseWriter, r *http.Request) {
	var req generateTokenRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ttl := 24 * time.Hour
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid expiresIn")
			return
		}
		ttl = d
	}

	token := models.EnrollmentToken{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}

	if req.DeviceID != "" {
		id, err := primitive.ObjectIDFromHex(req.DeviceID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid deviceId")
			return
		}
		token.DeviceID = &id
	}
	if name, ok := r.Context().Value("userName").(string); ok {
		token.CreatedBy = name
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := enrollTokenCollection.InsertOne(ctx, token)
	if err != nil {
		log.Printf("enrollment token insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		token.ID = id
	}

	utils.RespondWithJSON(w, http.StatusCreated, token)
}

type enrollRequest struct {
	Code string `json:"code"`
}

// EnrollDevice redeems an enrollment code from the mobile app. Codes are
// single-use and expire.
func EnrollDevice(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if config.EnrollDemoCode != "" && req.Code == config.EnrollDemoCode {
		utils.RespondWithJSON(w, http.StatusOK, bson.M{
			"success": true,
			"token":   "valid-session-token",
			"config":  bson.M{"organization": "TREL"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()

	// Atomically claim the token: unexpired, unused, matching code.
	res := enrollTokenCollection.FindOneAndUpdate(ctx,
		bson.M{
			"token":     req.Code,
			"expiresAt": bson.M{"$gt": now},
			"usedAt":    nil,
		},
		bson.M{"$set": bson.M{"usedAt": now}},
	)

	var token models.EnrollmentToken
	if err := res.Decode(&token); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired code")
			return
		}
		log.Printf("enrollment redeem error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Enrollment failed")
		return
	}

	resp := bson.M{"success": true, "token": "valid-session-token"}
	if token.DeviceID != nil {
		resp["deviceId"] = token.DeviceID.Hex()
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
