// handlers/device_handler.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/utils"
	"github.com/AndersonTREL/TREL-MDM/websocket"
)

type deviceListItem struct {
	models.Device `bson:",inline"`
	Assignment    *models.AssignmentWithPerson `json:"assignment,omitempty"`
}

// ListDevices returns every device with its live assignment embedded.
func ListDevices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "assetTag", Value: 1}})

	cursor, err := deviceCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("devices Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var devices []models.Device
	if err = cursor.All(ctx, &devices); err != nil {
		log.Printf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode devices")
		return
	}

	items := make([]deviceListItem, 0, len(devices))
	for _, d := range devices {
		item := deviceListItem{Device: d}
		if a, err := assignmentWithPerson(ctx, d.ID); err == nil {
			item.Assignment = a
		}
		items = append(items, item)
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

type createDeviceRequest struct {
	AssetTag     string `json:"assetTag"`
	SerialNumber string `json:"serialNumber"`
	IMEI         string `json:"imei"`
	Platform     string `json:"platform"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Notes        string `json:"notes"`
	Location     string `json:"location"`
}

// CreateDevice registers a new device; it always starts In Stock.
func CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AssetTag == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "assetTag is required")
		return
	}

	now := time.Now()
	device := models.Device{
		AssetTag:     req.AssetTag,
		SerialNumber: req.SerialNumber,
		IMEI:         req.IMEI,
		Platform:     req.Platform,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Status:       models.DeviceStatusInStock,
		Notes:        req.Notes,
		Location:     req.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := deviceCollection.InsertOne(ctx, device)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "a device with this asset tag or serial already exists")
			return
		}
		log.Printf("device insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create device")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		device.ID = id
	}

	userName, _ := r.Context().Value("userName").(string)
	websocket.SendDeviceCreated(device.ID.Hex(), device, userName)
	RecordAudit(ctx, auditFromRequest(r, "CREATE_DEVICE", "Device", device.ID.Hex(), bson.M{"assetTag": device.AssetTag}))

	utils.RespondWithJSON(w, http.StatusCreated, device)
}

// GetDevice returns the device with its assignment, history
// (most-recent-first) and the last five sync logs.
func GetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var device models.Device
	if err := deviceCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Device not found")
			return
		}
		log.Printf("device FindOne error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	detail := models.DeviceDetail{Device: device, History: []models.HistoryWithPeople{}, SyncLogs: []models.SyncLog{}}

	if a, err := assignmentWithPerson(ctx, id); err == nil {
		detail.Assignment = a
	}

	histOpts := options.Find().SetSort(bson.D{{Key: "transferredAt", Value: -1}}).SetLimit(50)
	cursor, err := historyCollection.Find(ctx, bson.M{"deviceId": id}, histOpts)
	if err == nil {
		var history []models.AssignmentHistory
		if err := cursor.All(ctx, &history); err == nil {
			for _, h := range history {
				item := models.HistoryWithPeople{AssignmentHistory: h}
				if h.FromPersonID != nil {
					item.FromPerson = personByID(ctx, *h.FromPersonID)
				}
				if h.ToPersonID != nil {
					item.ToPerson = personByID(ctx, *h.ToPersonID)
				}
				detail.History = append(detail.History, item)
			}
		}
	}

	syncOpts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(5)
	if cursor, err := syncLogCollection.Find(ctx, bson.M{"deviceId": id}, syncOpts); err == nil {
		var logs []models.SyncLog
		if err := cursor.All(ctx, &logs); err == nil {
			detail.SyncLogs = logs
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, detail)
}

type updateDeviceRequest struct {
	Location *string `json:"location"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

// UpdateDevice patches the mutable descriptive fields. Status changes here
// are restricted to unassigned devices; assignment-changing transitions go
// through the transfer endpoint so the history stays complete.
func UpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	var req updateDeviceRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}

	if req.Status != nil {
		switch *req.Status {
		case models.DeviceStatusLost, models.DeviceStatusInStock:
		default:
			utils.RespondWithError(w, http.StatusBadRequest, "status can only be patched to In Stock or Lost; use the transfer endpoint")
			return
		}

		count, err := assignmentCollection.CountDocuments(ctx, bson.M{"deviceId": id})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
			return
		}
		if count > 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "device is assigned; transfer it first")
			return
		}
		set["status"] = *req.Status
	}

	res := deviceCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Device
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Device not found")
			return
		}
		log.Printf("device update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update device")
		return
	}

	RecordAudit(ctx, auditFromRequest(r, "UPDATE_DEVICE", "Device", id.Hex(), bson.M{"set": set}))
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func assignmentWithPerson(ctx context.Context, deviceID primitive.ObjectID) (*models.AssignmentWithPerson, error) {
	var a models.Assignment
	err := assignmentCollection.FindOne(ctx, bson.M{"deviceId": deviceID}).Decode(&a)
	if err != nil {
		return nil, err
	}
	out := &models.AssignmentWithPerson{Assignment: a}
	out.Person = personByID(ctx, a.PersonID)
	return out, nil
}

func personByID(ctx context.Context, id primitive.ObjectID) *models.Person {
	var p models.Person
	if err := personCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil
	}
	return &p
}
