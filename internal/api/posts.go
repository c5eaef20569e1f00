package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloghub/internal/db"
	"bloghub/internal/models"
)

type PostHandler struct {
	posts    *db.PostRepository
	blogs    *db.BlogRepository
	comments *db.CommentRepository
	likes    *db.LikeRepository
	users    *db.UserRepository
}

func NewPostHandler(
	posts *db.PostRepository,
	blogs *db.BlogRepository,
	comments *db.CommentRepository,
	likes *db.LikeRepository,
	users *db.UserRepository,
) *PostHandler {
	return &PostHandler{
		posts:    posts,
		blogs:    blogs,
		comments: comments,
		likes:    likes,
		users:    users,
	}
}

func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, "createdAt")

	posts, total, err := h.posts.List("", page.SortBy, page.SortDirection, page.Number, page.Size)
	if err != nil {
		internalError(w)
		return
	}

	if err := decoratePosts(h.likes, posts, GetUserID(r)); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, newPagedResponse(page, total, posts))
}

func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := decoratePost(h.likes, post, GetUserID(r)); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

type PostRequest struct {
	Title            string `json:"title" validate:"required,max=30"`
	ShortDescription string `json:"shortDescription" validate:"required,max=100"`
	Content          string `json:"content" validate:"required,max=1000"`
	BlogID           string `json:"blogId" validate:"required"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	blog, err := h.blogs.FindByID(req.BlogID)
	if err != nil {
		badRequest(w, "blog does not exist", "blogId")
		return
	}

	id, err := db.GenerateID("post")
	if err != nil {
		internalError(w)
		return
	}

	post := &models.Post{
		ID:               id,
		Title:            sanitize(req.Title),
		ShortDescription: sanitize(req.ShortDescription),
		Content:          sanitize(req.Content),
		BlogID:           blog.ID,
		BlogName:         blog.Name,
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.posts.Create(post); err != nil {
		internalError(w)
		return
	}

	created, err := h.posts.FindByID(post.ID)
	if err != nil {
		internalError(w)
		return
	}
	if err := decoratePost(h.likes, created, GetUserID(r)); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	post, err := h.posts.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	blog, err := h.blogs.FindByID(req.BlogID)
	if err != nil {
		badRequest(w, "blog does not exist", "blogId")
		return
	}

	post.Title = sanitize(req.Title)
	post.ShortDescription = sanitize(req.ShortDescription)
	post.Content = sanitize(req.Content)
	post.BlogID = blog.ID
	post.BlogName = blog.Name

	if err := h.posts.Update(post); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

func (h *PostHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if _, err := h.posts.FindByID(postID); err != nil {
		writeServiceError(w, err)
		return
	}

	page := parsePage(r, "createdAt")
	comments, total, err := h.comments.ListForPost(postID, page.SortBy, page.SortDirection, page.Number, page.Size)
	if err != nil {
		internalError(w)
		return
	}

	if err := decorateComments(h.likes, comments, GetUserID(r)); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, newPagedResponse(page, total, comments))
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,min=20,max=300"`
}

func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	postID := chi.URLParam(r, "id")
	if _, err := h.posts.FindByID(postID); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.users.FindByID(GetUserID(r))
	if err != nil {
		unauthorized(w)
		return
	}

	commentID, err := db.GenerateID("cmt")
	if err != nil {
		internalError(w)
		return
	}

	comment := &models.Comment{
		ID:      commentID,
		PostID:  postID,
		Content: sanitize(req.Content),
		CommentatorInfo: models.CommentatorInfo{
			UserID:    user.ID,
			UserLogin: user.Login,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := h.comments.Create(comment); err != nil {
		internalError(w)
		return
	}

	created, err := h.comments.FindByID(comment.ID)
	if err != nil {
		internalError(w)
		return
	}
	if err := decorateComment(h.likes, created, user.ID); err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

type LikeStatusRequest struct {
	LikeStatus models.LikeStatus `json:"likeStatus" validate:"required,likestatus"`
}

// LikeStatus records the caller's reaction to a post.
func (h *PostHandler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	var req LikeStatusRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	postID := chi.URLParam(r, "id")
	if _, err := h.posts.FindByID(postID); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.users.FindByID(GetUserID(r))
	if err != nil {
		unauthorized(w)
		return
	}

	if err := h.likes.SetStatus(postID, user.ID, user.Login, req.LikeStatus); err != nil {
		internalError(w)
		return
	}

	noContent(w)
}
