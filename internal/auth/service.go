package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bloghub/internal/db"
	"bloghub/internal/models"
)

// UserStore is the slice of the user repository the orchestrator needs.
type UserStore interface {
	Create(u *models.User) error
	Update(u *models.User) error
	Delete(id string) error
	FindByID(id string) (*models.User, error)
	FindByLoginOrEmail(loginOrEmail string) (*models.User, error)
	FindByConfirmationCode(code string) (*models.User, error)
	FindByRecoveryCode(code string) (*models.User, error)
}

// DeviceStore persists one row per live login session.
type DeviceStore interface {
	Create(d *models.Device) error
	FindByID(deviceID string) (*models.Device, error)
	RotateLastActive(deviceID string, current, next time.Time) error
	Delete(deviceID, userID string) error
	DeleteAllForUser(userID string) error
}

type EmailSender interface {
	SendConfirmationCode(email, code string) error
	SendRecoveryCode(email, code string) error
}

// Service coordinates credential checks, token issuance and device lifecycle.
// Every state transition of a session passes through here.
type Service struct {
	users   UserStore
	devices DeviceStore
	tokens  *TokenService
	hasher  *PasswordHasher
	email   EmailSender
	codeTTL time.Duration
	now     func() time.Time
}

func NewService(
	users UserStore,
	devices DeviceStore,
	tokens *TokenService,
	hasher *PasswordHasher,
	email EmailSender,
	codeTTL time.Duration,
) *Service {
	return &Service{
		users:   users,
		devices: devices,
		tokens:  tokens,
		hasher:  hasher,
		email:   email,
		codeTTL: codeTTL,
		now:     time.Now,
	}
}

// Register creates an unconfirmed account and emails the confirmation code.
// A failed send rolls the account back so registration is all-or-nothing.
func (s *Service) Register(login, password, email string) error {
	if _, err := s.users.FindByLoginOrEmail(login); err == nil {
		return NewBadRequest("user with this login is already registered", "login")
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("checking login: %w", err)
	}

	if _, err := s.users.FindByLoginOrEmail(email); err == nil {
		return NewBadRequest("user with this email is already registered", "email")
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("checking email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	id, err := db.GenerateID("usr")
	if err != nil {
		return fmt.Errorf("generating user ID: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:                    id,
		Login:                 login,
		Email:                 email,
		PasswordHash:          hash,
		CreatedAt:             now,
		ConfirmationCode:      uuid.NewString(),
		ConfirmationExpiresAt: now.Add(s.codeTTL),
		IsConfirmed:           false,
		RecoveryExpiresAt:     now,
		IsRecovered:           true,
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return NewBadRequest("user with this login is already registered", "login")
		}
		return fmt.Errorf("creating user: %w", err)
	}

	if err := s.email.SendConfirmationCode(user.Email, user.ConfirmationCode); err != nil {
		slog.Error("error sending confirmation email", "error", err, "user_id", user.ID)
		if delErr := s.users.Delete(user.ID); delErr != nil {
			slog.Error("error rolling back user after failed email", "error", delErr, "user_id", user.ID)
		}
		return NewBadRequest("user creation error", "")
	}

	return nil
}

// ConfirmRegistration consumes a confirmation code exactly once.
func (s *Service) ConfirmRegistration(code string) error {
	user, err := s.users.FindByConfirmationCode(code)
	if errors.Is(err, db.ErrNotFound) {
		return NewBadRequest("user with this confirmation code is not registered", "code")
	}
	if err != nil {
		return fmt.Errorf("finding user by confirmation code: %w", err)
	}

	if !user.CanBeConfirmed(s.now().UTC()) {
		return NewBadRequest("confirmation code is expired or already confirmed", "code")
	}

	if err := user.Confirm(); err != nil {
		return fmt.Errorf("confirming user: %w", err)
	}

	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("saving confirmed user: %w", err)
	}

	return nil
}

// ResendConfirmation regenerates the confirmation code and resends it. If the
// send fails the previous code and window are restored, mirroring Register's
// rollback, and the operation reports failure.
func (s *Service) ResendConfirmation(email string) error {
	user, err := s.users.FindByLoginOrEmail(email)
	if errors.Is(err, db.ErrNotFound) {
		return NewBadRequest("user with this email is not registered", "email")
	}
	if err != nil {
		return fmt.Errorf("finding user by email: %w", err)
	}

	now := s.now().UTC()
	if !user.CanBeConfirmed(now) {
		return NewBadRequest("account cannot be confirmed", "email")
	}

	prevCode := user.ConfirmationCode
	prevExpiresAt := user.ConfirmationExpiresAt

	user.ConfirmationCode = uuid.NewString()
	user.ConfirmationExpiresAt = now.Add(s.codeTTL)
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("saving regenerated confirmation code: %w", err)
	}

	if err := s.email.SendConfirmationCode(user.Email, user.ConfirmationCode); err != nil {
		slog.Error("error resending confirmation email", "error", err, "user_id", user.ID)
		user.ConfirmationCode = prevCode
		user.ConfirmationExpiresAt = prevExpiresAt
		if restoreErr := s.users.Update(user); restoreErr != nil {
			slog.Error("error restoring confirmation code after failed email", "error", restoreErr, "user_id", user.ID)
		}
		return NewBadRequest("confirmation email could not be sent", "email")
	}

	return nil
}

// Login verifies credentials and opens a new device session. Unknown login,
// wrong password and banned account all collapse into ErrUnauthenticated.
func (s *Service) Login(ip, deviceTitle, loginOrEmail, password string) (*TokenPair, error) {
	user, err := s.users.FindByLoginOrEmail(loginOrEmail)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	if user.BanInfo.IsBanned {
		return nil, ErrUnauthenticated
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrUnauthenticated
	}

	deviceID := uuid.NewString()
	pair, err := s.tokens.IssuePair(user.ID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("issuing token pair: %w", err)
	}

	device := &models.Device{
		DeviceID:       deviceID,
		UserID:         user.ID,
		IP:             ip,
		Title:          deviceTitle,
		LastActiveDate: pair.IssuedAt,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.devices.Create(device); err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}

	return pair, nil
}

// Refresh rotates the device's token pair. The presented token's issued-at
// must equal the device's anchor; the anchor moves forward in one conditional
// write, so a concurrent rotation makes the loser fail instead of splitting
// the session.
func (s *Service) Refresh(userID, deviceID string, issuedAt time.Time) (*TokenPair, error) {
	if err := s.checkDeviceLiveness(userID, deviceID, issuedAt); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(userID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("issuing token pair: %w", err)
	}

	if err := s.devices.RotateLastActive(deviceID, issuedAt, pair.IssuedAt); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("rotating device: %w", err)
	}

	return pair, nil
}

// Logout hard-deletes the device session. There is no recoverable
// logged-out state; presenting the token again fails device lookup.
func (s *Service) Logout(userID, deviceID string, issuedAt time.Time) error {
	if err := s.checkDeviceLiveness(userID, deviceID, issuedAt); err != nil {
		return err
	}

	if err := s.devices.Delete(deviceID, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("deleting device: %w", err)
	}

	return nil
}

func (s *Service) checkDeviceLiveness(userID, deviceID string, issuedAt time.Time) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("finding user: %w", err)
	}
	if user.BanInfo.IsBanned {
		return ErrUnauthenticated
	}

	device, err := s.devices.FindByID(deviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("finding device: %w", err)
	}

	if !device.LastActiveDate.Equal(issuedAt) {
		return ErrUnauthenticated
	}

	return nil
}

// PasswordRecovery issues a recovery code and emails it. A failed send
// restores the previous recovery state.
func (s *Service) PasswordRecovery(email string) error {
	user, err := s.users.FindByLoginOrEmail(email)
	if errors.Is(err, db.ErrNotFound) {
		return NewBadRequest("user with this email is not registered", "email")
	}
	if err != nil {
		return fmt.Errorf("finding user by email: %w", err)
	}

	prevCode := user.RecoveryCode
	prevExpiresAt := user.RecoveryExpiresAt
	prevRecovered := user.IsRecovered

	now := s.now().UTC()
	user.RecoveryCode = uuid.NewString()
	user.RecoveryExpiresAt = now.Add(s.codeTTL)
	user.IsRecovered = false
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("saving recovery code: %w", err)
	}

	if err := s.email.SendRecoveryCode(user.Email, user.RecoveryCode); err != nil {
		slog.Error("error sending recovery email", "error", err, "user_id", user.ID)
		user.RecoveryCode = prevCode
		user.RecoveryExpiresAt = prevExpiresAt
		user.IsRecovered = prevRecovered
		if restoreErr := s.users.Update(user); restoreErr != nil {
			slog.Error("error restoring recovery state after failed email", "error", restoreErr, "user_id", user.ID)
		}
		return NewBadRequest("recovery email could not be sent", "email")
	}

	return nil
}

// ConfirmNewPassword consumes a recovery code and installs the new password.
func (s *Service) ConfirmNewPassword(recoveryCode, newPassword string) error {
	user, err := s.users.FindByRecoveryCode(recoveryCode)
	if errors.Is(err, db.ErrNotFound) {
		return NewBadRequest("user with this recovery code is not registered", "recoveryCode")
	}
	if err != nil {
		return fmt.Errorf("finding user by recovery code: %w", err)
	}

	if !user.CanRecoverPassword(s.now().UTC()) {
		return NewBadRequest("the password cannot be restored", "recoveryCode")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing new password: %w", err)
	}

	if err := user.ConsumeRecovery(hash); err != nil {
		return fmt.Errorf("consuming recovery code: %w", err)
	}

	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("saving new password: %w", err)
	}

	return nil
}

// SetBan bans or unbans a user. Banning purges every device row, which is
// the only forced global logout in the system: any outstanding refresh token
// loses the device record it must match.
func (s *Service) SetBan(userID string, isBanned bool, banReason string) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("finding user: %w", err)
	}

	if isBanned {
		user.Ban(banReason, s.now().UTC())
	} else {
		user.Unban()
	}

	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("saving ban state: %w", err)
	}

	if isBanned {
		if err := s.devices.DeleteAllForUser(userID); err != nil {
			return fmt.Errorf("purging user devices: %w", err)
		}
	}

	return nil
}
