package api

import (
	"bloghub/internal/db"
	"bloghub/internal/models"
)

const newestLikesLimit = 3

// decoratePost fills in like counters, the three most recent likers, and the
// caller's own reaction. An empty userID renders MyStatus as None.
func decoratePost(likes *db.LikeRepository, post *models.Post, userID string) error {
	likesCount, dislikesCount, err := likes.Counts(post.ID)
	if err != nil {
		return err
	}

	newest, err := likes.NewestLikes(post.ID, newestLikesLimit)
	if err != nil {
		return err
	}

	myStatus := models.LikeStatusNone
	if userID != "" {
		myStatus, err = likes.StatusFor(post.ID, userID)
		if err != nil {
			return err
		}
	}

	post.ExtendedLikesInfo = models.ExtendedLikesInfo{
		LikesCount:    likesCount,
		DislikesCount: dislikesCount,
		MyStatus:      myStatus,
		NewestLikes:   newest,
	}
	return nil
}

func decoratePosts(likes *db.LikeRepository, posts []*models.Post, userID string) error {
	for _, post := range posts {
		if err := decoratePost(likes, post, userID); err != nil {
			return err
		}
	}
	return nil
}

func decorateComment(likes *db.LikeRepository, comment *models.Comment, userID string) error {
	likesCount, dislikesCount, err := likes.Counts(comment.ID)
	if err != nil {
		return err
	}

	myStatus := models.LikeStatusNone
	if userID != "" {
		myStatus, err = likes.StatusFor(comment.ID, userID)
		if err != nil {
			return err
		}
	}

	comment.LikesInfo = models.LikesInfo{
		LikesCount:    likesCount,
		DislikesCount: dislikesCount,
		MyStatus:      myStatus,
	}
	return nil
}

func decorateComments(likes *db.LikeRepository, comments []*models.Comment, userID string) error {
	for _, comment := range comments {
		if err := decorateComment(likes, comment, userID); err != nil {
			return err
		}
	}
	return nil
}
