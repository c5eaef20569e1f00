package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloghub/internal/models"
)

type LikeRepository struct {
	db *DB
}

func NewLikeRepository(db *DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// SetStatus upserts the user's reaction to a post or comment. Setting None
// removes the row so counts stay a plain aggregate.
func (r *LikeRepository) SetStatus(entityID, userID, userLogin string, status models.LikeStatus) error {
	if status == models.LikeStatusNone {
		_, err := r.db.Exec(`DELETE FROM likes WHERE entity_id = ? AND user_id = ?`, entityID, userID)
		if err != nil {
			return fmt.Errorf("clearing like status: %w", err)
		}
		return nil
	}

	_, err := r.db.Exec(
		`INSERT INTO likes (entity_id, user_id, user_login, status, added_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (entity_id, user_id) DO UPDATE SET status = excluded.status, added_at = excluded.added_at`,
		entityID, userID, userLogin, string(status), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting like status: %w", err)
	}
	return nil
}

func (r *LikeRepository) Counts(entityID string) (likes, dislikes int, err error) {
	err = r.db.QueryRow(
		`SELECT
			COUNT(CASE WHEN status = 'Like' THEN 1 END),
			COUNT(CASE WHEN status = 'Dislike' THEN 1 END)
		   FROM likes WHERE entity_id = ?`,
		entityID,
	).Scan(&likes, &dislikes)
	if err != nil {
		return 0, 0, fmt.Errorf("counting likes: %w", err)
	}
	return likes, dislikes, nil
}

// StatusFor returns the user's reaction, or None when no row exists.
func (r *LikeRepository) StatusFor(entityID, userID string) (models.LikeStatus, error) {
	if userID == "" {
		return models.LikeStatusNone, nil
	}

	var status string
	err := r.db.QueryRow(
		`SELECT status FROM likes WHERE entity_id = ? AND user_id = ?`,
		entityID, userID,
	).Scan(&status)

	if errors.Is(err, sql.ErrNoRows) {
		return models.LikeStatusNone, nil
	}
	if err != nil {
		return models.LikeStatusNone, fmt.Errorf("querying like status: %w", err)
	}

	return models.LikeStatus(status), nil
}

func (r *LikeRepository) NewestLikes(entityID string, limit int) ([]models.NewestLike, error) {
	rows, err := r.db.Query(
		`SELECT added_at, user_id, user_login FROM likes
		  WHERE entity_id = ? AND status = 'Like'
		  ORDER BY added_at DESC LIMIT ?`,
		entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying newest likes: %w", err)
	}
	defer rows.Close()

	newest := []models.NewestLike{}
	for rows.Next() {
		var nl models.NewestLike
		if err := rows.Scan(&nl.AddedAt, &nl.UserID, &nl.Login); err != nil {
			return nil, fmt.Errorf("scanning newest like: %w", err)
		}
		newest = append(newest, nl)
	}

	return newest, rows.Err()
}
