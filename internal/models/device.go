package models

import "time"

// Device is one logged-in browser/client session. LastActiveDate equals the
// issued-at of the device's only live refresh token; a presented token whose
// iat differs has been rotated out and must be rejected.
type Device struct {
	DeviceID       string    `json:"deviceId"`
	UserID         string    `json:"-"`
	IP             string    `json:"ip"`
	Title          string    `json:"title"`
	LastActiveDate time.Time `json:"lastActiveDate"`
	CreatedAt      time.Time `json:"-"`
}
