package models

import "time"

type Blog struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WebsiteURL  string    `json:"websiteUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}
