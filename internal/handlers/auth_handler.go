package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"networth/internal/config"
	"networth/internal/models"
	"networth/internal/repository"
	"networth/internal/security"
	"networth/internal/services"
)

const resetLinkSentMessage = "If that email is registered, a reset link has been sent."

type AuthHandler struct {
	users  repository.UserRepository
	resets repository.PasswordResetRepository
	mailer services.EmailSender
	cfg    *config.Config
	v      *validator.Validate
}

func NewAuthHandler(db *sql.DB, cfg *config.Config, mailer services.EmailSender) *AuthHandler {
	return &AuthHandler{
		users:  repository.NewUserRepository(db),
		resets: repository.NewPasswordResetRepository(db),
		mailer: mailer,
		cfg:    cfg,
		v:      validator.New(),
	}
}

// @Tags Auth
// @Summary Register a new account
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeJSONError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.users.GetByEmail(r.Context(), email); err == nil {
		writeJSONError(w, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("register: email lookup failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		log.Printf("register: hashing failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Country:      defaultString(req.Country, "US"),
		Currency:     defaultString(req.Currency, "USD"),
		CreatedAt:    time.Now().UTC(),
	}
	if req.Mobile != "" {
		u.Mobile = &req.Mobile
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Lost a race with a concurrent registration for the same email.
			writeJSONError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("register: create user failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSONMessage(w, http.StatusCreated, "User created successfully")
}

// @Tags Auth
// @Summary Log in with email and password
// @Accept json
// @Produce json
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same response for unknown email and wrong password.
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !security.CheckPassword(req.Password, u.PasswordHash) {
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	expiresIn := h.cfg.JWTExpiresInSeconds
	if expiresIn <= 0 {
		expiresIn = 86400
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Duration(expiresIn) * time.Second).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		log.Printf("login: signing token failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   expiresIn,
		Email:       u.Email,
		Currency:    u.Currency,
	})
}

// @Tags Auth
// @Summary Request a password reset link
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeJSONError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if err := h.v.Var(req.Email, "email"); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := h.users.GetByEmail(r.Context(), email)
	if errors.Is(err, repository.ErrNotFound) {
		// Identical response whether or not the account exists, and no mail
		// is sent for unknown addresses.
		writeJSONMessage(w, http.StatusOK, resetLinkSentMessage)
		return
	}
	if err != nil {
		log.Printf("forgot-password: lookup failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	// Supersede any live token before issuing the next one; the two steps
	// must not interleave or two unused tokens could coexist.
	if err := h.resets.InvalidateForUser(r.Context(), u.ID); err != nil {
		log.Printf("forgot-password: invalidating tokens failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	raw, err := security.NewResetToken()
	if err != nil {
		log.Printf("forgot-password: token generation failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		Token:     raw,
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.resets.Create(r.Context(), token); err != nil {
		log.Printf("forgot-password: storing token failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	resetURL := strings.TrimRight(h.cfg.AppBaseURL, "/") + "/reset-password?token=" + raw
	if err := services.SendPasswordResetEmail(h.mailer, u.Email, resetURL); err != nil {
		log.Printf("forgot-password: sending mail failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSONMessage(w, http.StatusOK, resetLinkSentMessage)
}

// @Tags Auth
// @Summary Reset the password with a token
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Token and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeJSONError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	token, err := h.resets.GetByToken(r.Context(), req.Token)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSONError(w, http.StatusBadRequest, "Invalid or expired reset link")
		return
	}
	if err != nil {
		log.Printf("reset-password: token lookup failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if token.Used {
		writeJSONError(w, http.StatusBadRequest, "This reset link has already been used")
		return
	}
	if token.ExpiresAt.Before(time.Now().UTC()) {
		writeJSONError(w, http.StatusBadRequest, "This reset link has expired. Please request a new one.")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		log.Printf("reset-password: hashing failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if err := h.resets.Consume(r.Context(), token.ID, token.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrTokenConsumed) {
			writeJSONError(w, http.StatusBadRequest, "This reset link has already been used")
			return
		}
		log.Printf("reset-password: consume failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	writeJSONMessage(w, http.StatusOK, "Password reset successfully")
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
