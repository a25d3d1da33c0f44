package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/isdelr/machine-monitor-be/internal/auth"
	"github.com/isdelr/machine-monitor-be/internal/metrics"
	"github.com/isdelr/machine-monitor-be/internal/models"
	"github.com/isdelr/machine-monitor-be/internal/services"
	"github.com/isdelr/machine-monitor-be/internal/validation"
	"github.com/rs/zerolog/log"
)

const duplicateUsernameMsg = "A user with that username already exists."

// UserHandler handles registration, login, token refresh and profile lookup.
type UserHandler struct {
	service      services.UserServiceProvider
	events       services.EventServiceProvider
	tokens       *auth.TokenManager
	secureCookie bool
	cookieTTL    time.Duration
}

// NewUserHandler creates a new UserHandler. secureCookie marks the token cookie
// Secure; cookieTTL should match the access token lifetime.
func NewUserHandler(service services.UserServiceProvider, events services.EventServiceProvider, tokens *auth.TokenManager, secureCookie bool, cookieTTL time.Duration) *UserHandler {
	return &UserHandler{
		service:      service,
		events:       events,
		tokens:       tokens,
		secureCookie: secureCookie,
		cookieTTL:    cookieTTL,
	}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,bcryptlen"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshPayload defines the structure for token refresh requests.
type RefreshPayload struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return
	}
	if errs := validation.ValidateStruct(&payload); errs != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			errs := validation.FieldErrors{}
			errs.Add("username", duplicateUsernameMsg)
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		if errors.Is(err, services.ErrPasswordTooLong) {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			errs := validation.FieldErrors{}
			errs.Add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", validation.MaxPasswordBytes))
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeDetail(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	h.recordEvent(r.Context(), services.EventUserRegister, "info", fmt.Sprintf("User '%s' registered.", user.Username), &user.ID)

	writeJSON(w, http.StatusCreated, user.Public())
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if errs := validation.ValidateStruct(&payload); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
			h.recordEvent(r.Context(), services.EventUserLoginFail, "warn", fmt.Sprintf("Failed login for '%s'.", payload.Username), nil)
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to authenticate user")
		writeDetail(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		writeDetail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    pair.Access,
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.recordEvent(r.Context(), services.EventUserLogin, "info", fmt.Sprintf("User '%s' logged in.", user.Username), &user.ID)

	writeJSON(w, http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new access token.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if errs := validation.ValidateStruct(&payload); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	access, err := h.tokens.Refresh(payload.Refresh)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected refresh token")
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	writeJSON(w, http.StatusOK, models.AccessToken{Access: access})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeDetail(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to load user")
		writeDetail(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// recordEvent writes an audit event; failures are logged only.
func (h *UserHandler) recordEvent(ctx context.Context, eventType, level, message string, userID *int64) {
	if h.events == nil {
		return
	}
	if err := h.events.CreateEvent(ctx, eventType, level, message, userID); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
