package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloghub/internal/db"
)

type DeviceHandler struct {
	devices *db.DeviceRepository
}

func NewDeviceHandler(devices *db.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// GetAll lists the caller's active sessions. Devices of other users are never
// visible here.
func (h *DeviceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := deviceSession(r)
	if !ok {
		unauthorized(w)
		return
	}

	devices, err := h.devices.FindAllForUser(userID)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

// Delete terminates one session. An unknown device is 404; a device that
// belongs to someone else is 403, never silently removed.
func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, _, ok := deviceSession(r)
	if !ok {
		unauthorized(w)
		return
	}

	deviceID := chi.URLParam(r, "deviceId")

	device, err := h.devices.FindByID(deviceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if device.UserID != userID {
		forbidden(w, "Device belongs to another user")
		return
	}

	if err := h.devices.Delete(deviceID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

// DeleteOthers terminates every session except the one presenting the cookie.
func (h *DeviceHandler) DeleteOthers(w http.ResponseWriter, r *http.Request) {
	userID, deviceID, _, ok := deviceSession(r)
	if !ok {
		unauthorized(w)
		return
	}

	if err := h.devices.DeleteAllExcept(deviceID, userID); err != nil {
		internalError(w)
		return
	}

	noContent(w)
}
