package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloghub/internal/auth"
	"bloghub/internal/db"
	"bloghub/internal/models"
)

// UserHandler serves the administrative user endpoints behind the basic
// guard.
type UserHandler struct {
	users   *db.UserRepository
	service *auth.Service
	hasher  *auth.PasswordHasher
}

func NewUserHandler(users *db.UserRepository, service *auth.Service, hasher *auth.PasswordHasher) *UserHandler {
	return &UserHandler{
		users:   users,
		service: service,
		hasher:  hasher,
	}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, "createdAt")
	q := r.URL.Query()

	users, total, err := h.users.List(
		q.Get("searchLoginTerm"),
		q.Get("searchEmailTerm"),
		page.SortBy,
		page.SortDirection,
		page.Number,
		page.Size,
	)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, newPagedResponse(page, total, users))
}

type CreateUserRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=10,login_charset"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Email    string `json:"email" validate:"required,email"`
}

// Create provisions an account directly. Operator-created users skip email
// confirmation.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if existing, err := h.users.FindByLoginOrEmail(req.Login); err == nil && existing != nil {
		badRequest(w, "login is already taken", "login")
		return
	}
	if existing, err := h.users.FindByLoginOrEmail(req.Email); err == nil && existing != nil {
		badRequest(w, "email is already registered", "email")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		internalError(w)
		return
	}

	id, err := db.GenerateID("usr")
	if err != nil {
		internalError(w)
		return
	}

	user := &models.User{
		ID:           id,
		Login:        req.Login,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		IsConfirmed:  true,
		IsRecovered:  true,
	}
	if err := h.users.Create(user); err != nil {
		writeServiceError(w, err)
		return
	}

	created, err := h.users.FindByID(user.ID)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

type BanRequest struct {
	IsBanned  bool   `json:"isBanned"`
	BanReason string `json:"banReason" validate:"required_if=IsBanned true,omitempty,min=20"`
}

// Ban toggles a user's ban. Banning revokes every active session.
func (h *UserHandler) Ban(w http.ResponseWriter, r *http.Request) {
	var req BanRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.SetBan(chi.URLParam(r, "id"), req.IsBanned, req.BanReason); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}
