package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloghub/internal/db"
)

type CommentHandler struct {
	comments *db.CommentRepository
	likes    *db.LikeRepository
	users    *db.UserRepository
}

func NewCommentHandler(comments *db.CommentRepository, likes *db.LikeRepository, users *db.UserRepository) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		likes:    likes,
		users:    users,
	}
}

func (h *CommentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := decorateComment(h.likes, comment, GetUserID(r)); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// Update edits a comment's content. Only the author may edit; anyone else
// gets 403.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	comment, err := h.comments.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if comment.CommentatorInfo.UserID != GetUserID(r) {
		forbidden(w, "Comment belongs to another user")
		return
	}

	if err := h.comments.UpdateContent(comment.ID, sanitize(req.Content)); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comments.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if comment.CommentatorInfo.UserID != GetUserID(r) {
		forbidden(w, "Comment belongs to another user")
		return
	}

	if err := h.comments.Delete(comment.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

func (h *CommentHandler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	var req LikeStatusRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	commentID := chi.URLParam(r, "id")
	if _, err := h.comments.FindByID(commentID); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.users.FindByID(GetUserID(r))
	if err != nil {
		unauthorized(w)
		return
	}

	if err := h.likes.SetStatus(commentID, user.ID, user.Login, req.LikeStatus); err != nil {
		internalError(w)
		return
	}

	noContent(w)
}
