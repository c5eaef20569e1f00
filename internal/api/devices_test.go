package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"bloghub/internal/db"
	"bloghub/internal/models"
)

func withDeviceSession(req *http.Request, userID, deviceID string, issuedAt time.Time) *http.Request {
	ctx := context.WithValue(req.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, deviceIDKey, deviceID)
	ctx = context.WithValue(ctx, deviceIatKey, issuedAt)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func seedTwoUsersWithDevices(t *testing.T, database *db.DB, anchor time.Time) *db.DeviceRepository {
	t.Helper()

	users := db.NewUserRepository(database)
	for _, u := range []struct{ id, login, email string }{
		{"usr_1", "alice", "alice@example.com"},
		{"usr_2", "bob", "bob@example.com"},
	} {
		if err := users.Create(&models.User{
			ID: u.id, Login: u.login, Email: u.email,
			PasswordHash: "hash", CreatedAt: anchor, IsConfirmed: true, IsRecovered: true,
		}); err != nil {
			t.Fatalf("users.Create() error = %v", err)
		}
	}

	devices := db.NewDeviceRepository(database)
	for _, d := range []struct{ deviceID, userID string }{
		{"device-1", "usr_1"},
		{"device-2", "usr_1"},
		{"device-3", "usr_2"},
	} {
		if err := devices.Create(&models.Device{
			DeviceID: d.deviceID, UserID: d.userID, IP: "10.0.0.1", Title: "ua",
			LastActiveDate: anchor, CreatedAt: anchor,
		}); err != nil {
			t.Fatalf("devices.Create() error = %v", err)
		}
	}

	return devices
}

func TestGetAllListsOnlyOwnDevices(t *testing.T) {
	database := openTestDB(t)
	anchor := time.Now().UTC().Truncate(time.Second)
	devices := seedTwoUsersWithDevices(t, database, anchor)
	handler := NewDeviceHandler(devices)

	req := httptest.NewRequest(http.MethodGet, "/api/security/devices", nil)
	req = withDeviceSession(req, "usr_1", "device-1", anchor)
	rr := httptest.NewRecorder()
	handler.GetAll(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}

	var list []models.Device
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("json.Unmarshal() error = %v, body=%q", err, rr.Body.String())
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
}

func TestGetAllWithoutDevicesRendersEmptyArray(t *testing.T) {
	database := openTestDB(t)
	anchor := time.Now().UTC().Truncate(time.Second)
	devices := seedTwoUsersWithDevices(t, database, anchor)
	handler := NewDeviceHandler(devices)

	req := httptest.NewRequest(http.MethodGet, "/api/security/devices", nil)
	req = withDeviceSession(req, "usr_without_devices", "device-x", anchor)
	rr := httptest.NewRecorder()
	handler.GetAll(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("body = %q, want []", body)
	}
}

func TestDeleteUnknownDeviceIs404(t *testing.T) {
	database := openTestDB(t)
	anchor := time.Now().UTC().Truncate(time.Second)
	devices := seedTwoUsersWithDevices(t, database, anchor)
	handler := NewDeviceHandler(devices)

	req := httptest.NewRequest(http.MethodDelete, "/api/security/devices/device-x", nil)
	req = withDeviceSession(req, "usr_1", "device-1", anchor)
	req = withURLParam(req, "deviceId", "device-x")
	rr := httptest.NewRecorder()
	handler.Delete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteForeignDeviceIs403(t *testing.T) {
	database := openTestDB(t)
	anchor := time.Now().UTC().Truncate(time.Second)
	devices := seedTwoUsersWithDevices(t, database, anchor)
	handler := NewDeviceHandler(devices)

	req := httptest.NewRequest(http.MethodDelete, "/api/security/devices/device-3", nil)
	req = withDeviceSession(req, "usr_1", "device-1", anchor)
	req = withURLParam(req, "deviceId", "device-3")
	rr := httptest.NewRecorder()
	handler.Delete(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if _, err := devices.FindByID("device-3"); err != nil {
		t.Fatalf("foreign device was deleted: %v", err)
	}
}

func TestDeleteOwnDeviceIs204(t *testing.T) {
	database := openTestDB(t)
	anchor := time.Now().UTC().Truncate(time.Second)
	devices := seedTwoUsersWithDevices(t, database, anchor)
	handler := NewDeviceHandler(devices)

	req := httptest.NewRequest(http.MethodDelete, "/api/security/devices/device-2", nil)
	req = withDeviceSession(req, "usr_1", "device-1", anchor)
	req = withURLParam(req, "deviceId", "device-2")
	rr := httptest.NewRecorder()
	handler.Delete(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestDeleteOthersKeepsCurrentAndForeignDevices(t *testing.T) {
	database := openTestDB(t)
	anchor := time.Now().UTC().Truncate(time.Second)
	devices := seedTwoUsersWithDevices(t, database, anchor)
	handler := NewDeviceHandler(devices)

	req := httptest.NewRequest(http.MethodDelete, "/api/security/devices", nil)
	req = withDeviceSession(req, "usr_1", "device-1", anchor)
	rr := httptest.NewRecorder()
	handler.DeleteOthers(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}

	if _, err := devices.FindByID("device-1"); err != nil {
		t.Fatalf("current device deleted: %v", err)
	}
	if _, err := devices.FindByID("device-2"); err == nil {
		t.Fatal("sibling device survived, want deleted")
	}
	if _, err := devices.FindByID("device-3"); err != nil {
		t.Fatalf("foreign device deleted: %v", err)
	}
}
