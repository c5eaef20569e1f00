package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/models"
)

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(c *models.Comment) error {
	_, err := r.db.Exec(
		`INSERT INTO comments (id, post_id, content, user_id, user_login, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.Content, c.CommentatorInfo.UserID, c.CommentatorInfo.UserLogin, c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(id string) (*models.Comment, error) {
	var c models.Comment

	err := r.db.QueryRow(
		`SELECT id, post_id, content, user_id, user_login, created_at FROM comments WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.PostID, &c.Content, &c.CommentatorInfo.UserID, &c.CommentatorInfo.UserLogin, &c.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment: %w", err)
	}

	return &c, nil
}

func (r *CommentRepository) UpdateContent(id, content string) error {
	result, err := r.db.Exec(`UPDATE comments SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *CommentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *CommentRepository) ListForPost(postID, sortBy, sortDirection string, page, pageSize int) ([]*models.Comment, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}

	column := "created_at"
	if sortBy == "content" {
		column = "content"
	}
	direction := "DESC"
	if strings.EqualFold(sortDirection, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT id, post_id, content, user_id, user_login, created_at
		   FROM comments WHERE post_id = ? ORDER BY %s %s LIMIT ? OFFSET ?`,
		column, direction,
	)

	rows, err := r.db.Query(query, postID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.CommentatorInfo.UserID, &c.CommentatorInfo.UserLogin, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, &c)
	}

	return comments, total, rows.Err()
}
