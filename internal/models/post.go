package models

import "time"

type Post struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	Content          string    `json:"content"`
	BlogID           string    `json:"blogId"`
	BlogName         string    `json:"blogName"`
	CreatedAt        time.Time `json:"createdAt"`

	ExtendedLikesInfo ExtendedLikesInfo `json:"extendedLikesInfo"`
}

type ExtendedLikesInfo struct {
	LikesCount    int          `json:"likesCount"`
	DislikesCount int          `json:"dislikesCount"`
	MyStatus      LikeStatus   `json:"myStatus"`
	NewestLikes   []NewestLike `json:"newestLikes"`
}

type NewestLike struct {
	AddedAt time.Time `json:"addedAt"`
	UserID  string    `json:"userId"`
	Login   string    `json:"login"`
}
