// handlers/transfer_handler.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AndersonTREL/TREL-MDM/models"
	"github.com/AndersonTREL/TREL-MDM/transfer"
	"github.com/AndersonTREL/TREL-MDM/utils"
	"github.com/AndersonTREL/TREL-MDM/websocket"
)

type transferRequest struct {
	DeviceID   string `json:"deviceId"`
	NewOwnerID string `json:"newOwnerId"` // person id, "REPAIR", or empty for stock
	Notes      string `json:"notes"`
	AdminName  string `json:"adminName"`
}

type transferResponse struct {
	Success bool                      `json:"success"`
	History *models.AssignmentHistory `json:"history"`
}

// TransferDevice runs the atomic ownership change and returns the history
// row it created. The audit entry and websocket broadcast happen after the
// commit and never affect the outcome.
func TransferDevice(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DeviceID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing deviceId or adminName")
		return
	}

	deviceID, err := primitive.ObjectIDFromHex(req.DeviceID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid deviceId")
		return
	}

	target, err := transfer.ParseTarget(req.NewOwnerID)
	if err != nil {
		respondTransferError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	history, err := transferWorkflow.Transfer(ctx, transfer.Request{
		DeviceID:  deviceID,
		Target:    target,
		Notes:     req.Notes,
		ActorName: req.AdminName,
	})
	if err != nil {
		respondTransferError(w, err)
		return
	}

	RecordAudit(ctx, auditFromRequest(r, "DEVICE_TRANSFER", "Device", req.DeviceID, bson.M{
		"newOwnerId": req.NewOwnerID,
		"historyId":  history.ID.Hex(),
	}))
	websocket.SendTransferCompleted(req.DeviceID, history, req.AdminName)

	utils.RespondWithJSON(w, http.StatusOK, transferResponse{Success: true, History: history})
}

func respondTransferError(w http.ResponseWriter, err error) {
	var ve *transfer.ValidationError
	var nf *transfer.NotFoundError
	var ce *transfer.ConflictError

	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(w, http.StatusBadRequest, ve.Msg)
	case errors.As(err, &nf):
		utils.RespondWithError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		utils.RespondWithError(w, http.StatusConflict, "device was modified concurrently, retry")
	default:
		log.Printf("transfer failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process transfer")
	}
}
