package models

import "time"

type Comment struct {
	ID              string          `json:"id"`
	PostID          string          `json:"-"`
	Content         string          `json:"content"`
	CommentatorInfo CommentatorInfo `json:"commentatorInfo"`
	CreatedAt       time.Time       `json:"createdAt"`

	LikesInfo LikesInfo `json:"likesInfo"`
}

type CommentatorInfo struct {
	UserID    string `json:"userId"`
	UserLogin string `json:"userLogin"`
}

type LikesInfo struct {
	LikesCount    int        `json:"likesCount"`
	DislikesCount int        `json:"dislikesCount"`
	MyStatus      LikeStatus `json:"myStatus"`
}

// LikeStatus is a user's reaction to a post or comment.
type LikeStatus string

const (
	LikeStatusNone    LikeStatus = "None"
	LikeStatusLike    LikeStatus = "Like"
	LikeStatusDislike LikeStatus = "Dislike"
)

func (s LikeStatus) Valid() bool {
	switch s {
	case LikeStatusNone, LikeStatusLike, LikeStatusDislike:
		return true
	}
	return false
}
