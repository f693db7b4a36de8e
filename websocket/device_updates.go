package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// DeviceUpdate represents a real-time inventory event
type DeviceUpdate struct {
	Type      string      `json:"type"` // DEVICE_TRANSFERRED, DEVICE_SYNCED, DEVICE_CREATED
	DeviceID  string      `json:"deviceId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	UserName  string      `json:"userName,omitempty"`
}

// BroadcastDeviceUpdate sends the update to every connected client.
func BroadcastDeviceUpdate(update DeviceUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Failed to marshal device update: %v", err)
		return
	}
	hub.broadcast <- data
}

// SendTransferCompleted broadcasts a finished ownership transfer.
func SendTransferCompleted(deviceID string, history interface{}, userName string) {
	BroadcastDeviceUpdate(DeviceUpdate{
		Type:      "DEVICE_TRANSFERRED",
		DeviceID:  deviceID,
		Data:      history,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}

// SendDeviceSynced broadcasts a mobile agent check-in.
func SendDeviceSynced(deviceID string, payload interface{}) {
	BroadcastDeviceUpdate(DeviceUpdate{
		Type:      "DEVICE_SYNCED",
		DeviceID:  deviceID,
		Data:      payload,
		Timestamp: time.Now(),
	})
}

// SendDeviceCreated broadcasts a newly registered device.
func SendDeviceCreated(deviceID string, device interface{}, userName string) {
	BroadcastDeviceUpdate(DeviceUpdate{
		Type:      "DEVICE_CREATED",
		DeviceID:  deviceID,
		Data:      device,
		Timestamp: time.Now(),
		UserName:  userName,
	})
}
