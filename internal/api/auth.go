package api

import (
	"net/http"
	"time"

	"bloghub/internal/auth"
	"bloghub/internal/db"
)

type AuthHandler struct {
	service *auth.Service
	users   *db.UserRepository
	tokens  *auth.TokenService
}

func NewAuthHandler(service *auth.Service, users *db.UserRepository, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		service: service,
		users:   users,
		tokens:  tokens,
	}
}

type LoginRequest struct {
	LoginOrEmail string `json:"loginOrEmail" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	pair, err := h.service.Login(clientIP(r), r.UserAgent(), req.LoginOrEmail, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	userID, deviceID, issuedAt, ok := deviceSession(r)
	if !ok {
		unauthorized(w)
		return
	}

	pair, err := h.service.Refresh(userID, deviceID, issuedAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, deviceID, issuedAt, ok := deviceSession(r)
	if !ok {
		unauthorized(w)
		return
	}

	if err := h.service.Logout(userID, deviceID, issuedAt); err != nil {
		writeServiceError(w, err)
		return
	}

	h.clearRefreshCookie(w)
	noContent(w)
}

type MeResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(GetUserID(r))
	if err != nil {
		unauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		Email:  user.Email,
		Login:  user.Login,
		UserID: user.ID,
	})
}

type RegistrationRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=10,login_charset"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Email    string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) Registration(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.Register(req.Login, req.Password, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

type ConfirmationRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *AuthHandler) RegistrationConfirmation(w http.ResponseWriter, r *http.Request) {
	var req ConfirmationRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.ConfirmRegistration(req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) RegistrationEmailResending(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.ResendConfirmation(req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

func (h *AuthHandler) PasswordRecovery(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.PasswordRecovery(req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

type NewPasswordRequest struct {
	NewPassword  string `json:"newPassword" validate:"required,min=6,max=20"`
	RecoveryCode string `json:"recoveryCode" validate:"required"`
}

func (h *AuthHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req NewPasswordRequest
	if fieldErrors := decodeAndValidate(r.Body, &req); fieldErrors != nil {
		writeFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.ConfirmNewPassword(req.RecoveryCode, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	noContent(w)
}

// setRefreshCookie installs the rotated refresh token. The cookie is scoped to
// /api and never readable from scripts; its lifetime matches the token's.
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api",
		MaxAge:   int(h.tokens.RefreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
