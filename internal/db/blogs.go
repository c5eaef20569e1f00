package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bloghub/internal/models"
)

type BlogRepository struct {
	db *DB
}

func NewBlogRepository(db *DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(b *models.Blog) error {
	_, err := r.db.Exec(
		`INSERT INTO blogs (id, name, description, website_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.WebsiteURL, b.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating blog: %w", err)
	}
	return nil
}

func (r *BlogRepository) FindByID(id string) (*models.Blog, error) {
	var b models.Blog

	err := r.db.QueryRow(
		`SELECT id, name, description, website_url, created_at FROM blogs WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Description, &b.WebsiteURL, &b.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying blog: %w", err)
	}

	return &b, nil
}

func (r *BlogRepository) Update(b *models.Blog) error {
	result, err := r.db.Exec(
		`UPDATE blogs SET name = ?, description = ?, website_url = ? WHERE id = ?`,
		b.Name, b.Description, b.WebsiteURL, b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating blog: %w", err)
	}

	// Keep the denormalized blog name on posts in sync.
	if _, err := r.db.Exec(`UPDATE posts SET blog_name = ? WHERE blog_id = ?`, b.Name, b.ID); err != nil {
		return fmt.Errorf("updating blog name on posts: %w", err)
	}

	return checkRowsAffected(result)
}

func (r *BlogRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM blogs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting blog: %w", err)
	}
	return checkRowsAffected(result)
}

var blogSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

func (r *BlogRepository) List(searchNameTerm, sortBy, sortDirection string, page, pageSize int) ([]*models.Blog, int, error) {
	where := "1 = 1"
	args := []any{}
	if searchNameTerm != "" {
		where = "name LIKE ?"
		args = append(args, "%"+searchNameTerm+"%")
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM blogs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting blogs: %w", err)
	}

	column, ok := blogSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortDirection, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT id, name, description, website_url, created_at FROM blogs WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?`,
		where, column, direction,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying blogs: %w", err)
	}
	defer rows.Close()

	blogs := []*models.Blog{}
	for rows.Next() {
		var b models.Blog
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.WebsiteURL, &b.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning blog: %w", err)
		}
		blogs = append(blogs, &b)
	}

	return blogs, total, rows.Err()
}
