package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, login, email, password_hash, created_at,
	confirmation_code, confirmation_expires_at, is_confirmed,
	recovery_code, recovery_expires_at, is_recovered,
	is_banned, ban_date, ban_reason`

func (r *UserRepository) Create(u *models.User) error {
	_, err := r.db.Exec(
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Login, u.Email, u.PasswordHash, u.CreatedAt.UTC(),
		u.ConfirmationCode, u.ConfirmationExpiresAt.UTC(), u.IsConfirmed,
		u.RecoveryCode, u.RecoveryExpiresAt.UTC(), u.IsRecovered,
		u.BanInfo.IsBanned, u.BanInfo.BanDate, u.BanInfo.BanReason,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Update persists every mutable user field. Identity columns (id, login,
// email, created_at) never change after creation.
func (r *UserRepository) Update(u *models.User) error {
	result, err := r.db.Exec(
		`UPDATE users SET
			password_hash = ?,
			confirmation_code = ?, confirmation_expires_at = ?, is_confirmed = ?,
			recovery_code = ?, recovery_expires_at = ?, is_recovered = ?,
			is_banned = ?, ban_date = ?, ban_reason = ?
		 WHERE id = ?`,
		u.PasswordHash,
		u.ConfirmationCode, u.ConfirmationExpiresAt.UTC(), u.IsConfirmed,
		u.RecoveryCode, u.RecoveryExpiresAt.UTC(), u.IsRecovered,
		u.BanInfo.IsBanned, u.BanInfo.BanDate, u.BanInfo.BanReason,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindByLoginOrEmail matches the value exactly against either column.
func (r *UserRepository) FindByLoginOrEmail(loginOrEmail string) (*models.User, error) {
	return r.findOne(
		`SELECT `+userColumns+` FROM users WHERE login = ? OR email = ?`,
		loginOrEmail, loginOrEmail,
	)
}

func (r *UserRepository) FindByConfirmationCode(code string) (*models.User, error) {
	return r.findOne(
		`SELECT `+userColumns+` FROM users WHERE confirmation_code = ? AND confirmation_code != ''`,
		code,
	)
}

func (r *UserRepository) FindByRecoveryCode(code string) (*models.User, error) {
	return r.findOne(
		`SELECT `+userColumns+` FROM users WHERE recovery_code = ? AND recovery_code != ''`,
		code,
	)
}

var userSortColumns = map[string]string{
	"login":     "login",
	"email":     "email",
	"createdAt": "created_at",
}

// List returns one page of users plus the total count for the filter.
func (r *UserRepository) List(searchLoginTerm, searchEmailTerm, sortBy, sortDirection string, page, pageSize int) ([]*models.User, int, error) {
	var conditions []string
	args := []any{}
	if searchLoginTerm != "" {
		conditions = append(conditions, "login LIKE ?")
		args = append(args, "%"+searchLoginTerm+"%")
	}
	if searchEmailTerm != "" {
		conditions = append(conditions, "email LIKE ?")
		args = append(args, "%"+searchEmailTerm+"%")
	}
	where := "1 = 1"
	if len(conditions) > 0 {
		where = "(" + strings.Join(conditions, " OR ") + ")"
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	column, ok := userSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortDirection, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		userColumns, where, column, direction,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}

	return users, total, rows.Err()
}

func (r *UserRepository) findOne(query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var banDate sql.NullTime
	var banReason sql.NullString

	err := row.Scan(
		&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.CreatedAt,
		&u.ConfirmationCode, &u.ConfirmationExpiresAt, &u.IsConfirmed,
		&u.RecoveryCode, &u.RecoveryExpiresAt, &u.IsRecovered,
		&u.BanInfo.IsBanned, &banDate, &banReason,
	)
	if err != nil {
		return nil, err
	}

	u.BanInfo.BanDate = nullTimeToPtr(banDate)
	u.BanInfo.BanReason = nullStringToPtr(banReason)

	return &u, nil
}
