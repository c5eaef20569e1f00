package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloghub/internal/db"
	"bloghub/internal/models"
)

type BlogHandler struct {
	blogs *db.BlogRepository
	posts *db.PostRepository
	likes *db.LikeRepository
}

func NewBlogHandler(blogs *db.BlogRepository, posts *db.PostRepository, likes *db.LikeRepository) *BlogHandler {
	return &BlogHandler{
		blogs: blogs,
		posts: posts,
		likes: likes,
	}
}

func (h *BlogHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, "createdAt")

	blogs, total, err := h.blogs.List(
		r.URL.Query().Get("searchNameTerm"),
		page.SortBy,
		page.SortDirection,
		page.Number,
		page.Size,
	)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, newPagedResponse(page, total, blogs))
}

func (h *BlogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blog)
}

type BlogRequest struct {
	Name        string `json:"name" validate:"required,max=15"`
	Description string `json:"description" validate:"required,max=500"`
	WebsiteURL  string `json:"websiteUrl" validate:"required,url,max=100"`
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BlogRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	id, err := db.GenerateID("blog")
	if err != nil {
		internalError(w)
		return
	}

	blog := &models.Blog{
		ID:          id,
		Name:        sanitize(req.Name),
		Description: sanitize(req.Description),
		WebsiteURL:  req.WebsiteURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.blogs.Create(blog); err != nil {
		internalError(w)
		return
	}

	created, err := h.blogs.FindByID(blog.ID)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req BlogRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	blog, err := h.blogs.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	blog.Name = sanitize(req.Name)
	blog.Description = sanitize(req.Description)
	blog.WebsiteURL = req.WebsiteURL

	if err := h.blogs.Update(blog); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.blogs.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

// GetPosts lists the posts of one blog with like info personalized for the
// caller when a bearer token was presented.
func (h *BlogHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	blogID := chi.URLParam(r, "id")
	if _, err := h.blogs.FindByID(blogID); err != nil {
		writeServiceError(w, err)
		return
	}

	page := parsePage(r, "createdAt")
	posts, total, err := h.posts.List(blogID, page.SortBy, page.SortDirection, page.Number, page.Size)
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

type BlogPostRequest struct {
	Title            string `json:"title" validate:"required,max=30"`
	ShortDescription string `json:"shortDescription" validate:"required,max=100"`
	Content          string `json:"content" validate:"required,max=1000"`
}

func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req BlogPostRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	blog, err := h.blogs.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	postID, err := db.GenerateID("post")
	if err != nil {
		internalError(w)
		return
	}

	post := &models.Post{
		ID:               postID,
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
