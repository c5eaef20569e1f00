package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloghub/internal/models"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(d *models.Device) error {
	_, err := r.db.Exec(
		`INSERT INTO devices (device_id, user_id, ip, title, last_active_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.DeviceID, d.UserID, d.IP, d.Title, d.LastActiveDate.UTC(), d.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) FindByID(deviceID string) (*models.Device, error) {
	var d models.Device

	err := r.db.QueryRow(
		`SELECT device_id, user_id, ip, title, last_active_date, created_at
		   FROM devices WHERE device_id = ?`,
		deviceID,
	).Scan(&d.DeviceID, &d.UserID, &d.IP, &d.Title, &d.LastActiveDate, &d.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying device: %w", err)
	}

	return &d, nil
}

func (r *DeviceRepository) FindAllForUser(userID string) ([]*models.Device, error) {
	rows, err := r.db.Query(
		`SELECT device_id, user_id, ip, title, last_active_date, created_at
		   FROM devices WHERE user_id = ? ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []*models.Device{}
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.DeviceID, &d.UserID, &d.IP, &d.Title, &d.LastActiveDate, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, &d)
	}

	return devices, rows.Err()
}

// RotateLastActive moves the device's refresh-token anchor from current to
// next as a single conditional update. Zero rows affected means the anchor
// changed underneath us (concurrent rotation or revocation) and the caller
// must treat the presented token as invalid.
func (r *DeviceRepository) RotateLastActive(deviceID string, current, next time.Time) error {
	result, err := r.db.Exec(
		`UPDATE devices SET last_active_date = ? WHERE device_id = ? AND last_active_date = ?`,
		next.UTC(), deviceID, current.UTC(),
	)
	if err != nil {
		return fmt.Errorf("rotating device anchor: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *DeviceRepository) Delete(deviceID, userID string) error {
	result, err := r.db.Exec(
		`DELETE FROM devices WHERE device_id = ? AND user_id = ?`,
		deviceID, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return checkRowsAffected(result)
}

// DeleteAllExcept removes every device of the user but the current one.
func (r *DeviceRepository) DeleteAllExcept(currentDeviceID, userID string) error {
	_, err := r.db.Exec(
		`DELETE FROM devices WHERE user_id = ? AND device_id != ?`,
		userID, currentDeviceID,
	)
	if err != nil {
		return fmt.Errorf("deleting devices: %w", err)
	}
	return nil
}

func (r *DeviceRepository) DeleteAllForUser(userID string) error {
	_, err := r.db.Exec(`DELETE FROM devices WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user devices: %w", err)
	}
	return nil
}

// DeleteExpired removes devices whose anchor is so old that no refresh token
// bound to them could still verify. Expiry enforcement itself happens at
// token verification; this only reclaims dead rows.
func (r *DeviceRepository) DeleteExpired(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM devices WHERE last_active_date < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired devices: %w", err)
	}

	return result.RowsAffected()
}
