package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/models"
)

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(p *models.Post) error {
	_, err := r.db.Exec(
		`INSERT INTO posts (id, title, short_description, content, blog_id, blog_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.ShortDescription, p.Content, p.BlogID, p.BlogName, p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(id string) (*models.Post, error) {
	var p models.Post

	err := r.db.QueryRow(
		`SELECT id, title, short_description, content, blog_id, blog_name, created_at
		   FROM posts WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Title, &p.ShortDescription, &p.Content, &p.BlogID, &p.BlogName, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying post: %w", err)
	}

	return &p, nil
}

func (r *PostRepository) Update(p *models.Post) error {
	result, err := r.db.Exec(
		`UPDATE posts SET title = ?, short_description = ?, content = ?, blog_id = ?, blog_name = ? WHERE id = ?`,
		p.Title, p.ShortDescription, p.Content, p.BlogID, p.BlogName, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *PostRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return checkRowsAffected(result)
}

var postSortColumns = map[string]string{
	"title":     "title",
	"blogName":  "blog_name",
	"createdAt": "created_at",
}

// List returns one page of posts, optionally restricted to a blog.
func (r *PostRepository) List(blogID, sortBy, sortDirection string, page, pageSize int) ([]*models.Post, int, error) {
	where := "1 = 1"
	args := []any{}
	if blogID != "" {
		where = "blog_id = ?"
		args = append(args, blogID)
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting posts: %w", err)
	}

	column, ok := postSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortDirection, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT id, title, short_description, content, blog_id, blog_name, created_at
		   FROM posts WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		where, column, direction,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.ShortDescription, &p.Content, &p.BlogID, &p.BlogName, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, &p)
	}

	return posts, total, rows.Err()
}
