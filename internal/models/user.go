package models

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`

	ConfirmationCode      string    `json:"-"`
	ConfirmationExpiresAt time.Time `json:"-"`
	IsConfirmed           bool      `json:"-"`

	RecoveryCode      string    `json:"-"`
	RecoveryExpiresAt time.Time `json:"-"`
	IsRecovered       bool      `json:"-"`

	BanInfo BanInfo `json:"banInfo"`
}

type BanInfo struct {
	IsBanned  bool       `json:"isBanned"`
	BanDate   *time.Time `json:"banDate"`
	BanReason *string    `json:"banReason"`
}

var (
	ErrAlreadyConfirmed = errors.New("account is already confirmed")
	ErrAlreadyRecovered = errors.New("recovery code has already been used")
)

// CanBeConfirmed reports whether the confirmation code is still usable:
// not consumed yet and inside the confirmation window.
func (u *User) CanBeConfirmed(now time.Time) bool {
	return !u.IsConfirmed && now.Before(u.ConfirmationExpiresAt)
}

// Confirm marks the account confirmed. Callers must check CanBeConfirmed
// first; the error only guards against programmer misuse.
func (u *User) Confirm() error {
	if u.IsConfirmed {
		return ErrAlreadyConfirmed
	}
	u.IsConfirmed = true
	return nil
}

// CanRecoverPassword reports whether the recovery code is still usable.
func (u *User) CanRecoverPassword(now time.Time) bool {
	return !u.IsRecovered && u.RecoveryCode != "" && now.Before(u.RecoveryExpiresAt)
}

// ConsumeRecovery installs the new password hash and marks the recovery
// code used. Callers must check CanRecoverPassword first.
func (u *User) ConsumeRecovery(newPasswordHash string) error {
	if u.IsRecovered {
		return ErrAlreadyRecovered
	}
	u.PasswordHash = newPasswordHash
	u.IsRecovered = true
	u.RecoveryCode = ""
	return nil
}

func (u *User) Ban(reason string, now time.Time) {
	u.BanInfo = BanInfo{
		IsBanned:  true,
		BanDate:   &now,
		BanReason: &reason,
	}
}

func (u *User) Unban() {
	u.BanInfo = BanInfo{}
}
