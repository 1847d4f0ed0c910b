package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/example/tg-storefront/internal/api/middleware"
	"github.com/example/tg-storefront/internal/auth"
	"github.com/example/tg-storefront/internal/storefront"
	log "github.com/sirupsen/logrus"
)

// AdminChecker asks the shop API whether a Telegram user administers it.
type AdminChecker interface {
	CheckAdmin(ctx context.Context, userID int64) (bool, error)
}

// AuthHandlers handles Telegram sign-in and session tokens
type AuthHandlers struct {
	jwtService        *auth.JWTService
	verifier          *auth.InitDataVerifier
	sessions          *storefront.Registry
	admins            auth.AdminSet
	checker           AdminChecker
	adminPasswordHash string
	logger            *log.Entry
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(jwtService *auth.JWTService, verifier *auth.InitDataVerifier, sessions *storefront.Registry, admins auth.AdminSet, adminPasswordHash string) *AuthHandlers {
	return &AuthHandlers{
		jwtService:        jwtService,
		verifier:          verifier,
		sessions:          sessions,
		admins:            admins,
		adminPasswordHash: adminPasswordHash,
		logger:            log.WithField("component", "auth"),
	}
}

// WithAdminChecker makes users outside ADMIN_IDS admins when the shop API
// says so.
func (h *AuthHandlers) WithAdminChecker(checker AdminChecker) *AuthHandlers {
	h.checker = checker
	return h
}

func (h *AuthHandlers) roleFor(ctx context.Context, userID int64) string {
	if h.admins.IsAdmin(userID) || h.checker == nil {
		return h.admins.RoleFor(userID)
	}
	ok, err := h.checker.CheckAdmin(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("telegram_user_id", userID).Warn("admin check failed")
		return auth.RoleCustomer
	}
	if ok {
		return auth.RoleAdmin
	}
	return auth.RoleCustomer
}

// TelegramAuthRequest carries the raw WebApp initData string
type TelegramAuthRequest struct {
	InitData string `json:"init_data"`
}

// AdminLoginRequest represents the admin login request body
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AuthResponse describes the identity of the caller
type AuthResponse struct {
	Authorized  bool       `json:"authorized"`
	User        *auth.User `json:"user"`
	DisplayName string     `json:"display_name,omitempty"`
	Role        string     `json:"role"`
	AccessToken string     `json:"access_token,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func anonymousResponse() AuthResponse {
	return AuthResponse{Role: auth.RoleCustomer}
}

// TelegramAuth signs the caller in with Telegram initData. Missing or
// invalid data keeps the session anonymous; it is not an error.
func (h *AuthHandlers) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	var req TelegramAuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	data, err := h.verifier.Verify(req.InitData)
	if err != nil || data.User == nil {
		h.logger.WithError(err).Debug("continuing anonymously")
		respondJSON(w, http.StatusOK, anonymousResponse())
		return
	}
	user := *data.User

	fromKey := ""
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && claims.Anonymous() {
		fromKey = claims.SessionKey()
	}
	s, err := h.sessions.Promote(r.Context(), fromKey, user.SessionKey(), user.ID)
	if err != nil {
		h.logger.WithError(err).WithField("telegram_user_id", user.ID).Error("failed to open user session")
		respondJSONError(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := s.Remember.Remember(r.Context(), user); err != nil {
		h.logger.WithError(err).WithField("telegram_user_id", user.ID).Warn("failed to remember user")
	}

	resp, err := h.setAuthCookies(w, r, user, h.roleFor(r.Context(), user.ID))
	if err != nil {
		h.logger.WithError(err).Error("failed to issue tokens")
		respondJSONError(w, "failed to issue tokens", http.StatusInternalServerError)
		return
	}

	h.logger.WithFields(log.Fields{
		"telegram_user_id": user.ID,
		"role":             resp.Role,
	}).Info("telegram user signed in")
	respondJSON(w, http.StatusOK, resp)
}

// Refresh issues a new access token for the remembered user of the refresh
// token. A forgotten or expired record ends the session.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	telegramID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	s, err := h.sessions.Session(r.Context(), auth.UserSessionKey(telegramID), telegramID)
	if err != nil {
		respondJSONError(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	user, ok := s.Remember.Recall(r.Context())
	if !ok || user.ID != telegramID {
		h.clearAuthCookies(w)
		respondJSONError(w, "Session expired", http.StatusUnauthorized)
		return
	}

	resp, err := h.setAuthCookies(w, r, *user, h.roleFor(r.Context(), user.ID))
	if err != nil {
		respondJSONError(w, "failed to issue tokens", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Logout forgets the remembered user and drops the session cookies.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok && !claims.Anonymous() {
		s, err := h.sessions.Session(r.Context(), claims.SessionKey(), claims.TelegramUserID)
		if err == nil {
			if err := s.Remember.Forget(r.Context()); err != nil {
				h.logger.WithError(err).Warn("failed to forget user")
			}
		}
	}

	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Me returns the identity of the caller.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok || claims.Anonymous() {
		respondJSON(w, http.StatusOK, anonymousResponse())
		return
	}

	user := claims.User()
	respondJSON(w, http.StatusOK, AuthResponse{
		Authorized:  true,
		User:        user,
		DisplayName: user.DisplayName(),
		Role:        claims.Role,
	})
}

// AdminLogin elevates a signed-in Telegram user with the admin password.
func (h *AuthHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok || claims.Anonymous() {
		respondJSONError(w, "telegram identity required", http.StatusUnauthorized)
		return
	}

	var req AdminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := auth.VerifyAdminPassword(req.Password, h.adminPasswordHash); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrAdminLoginDisabled) {
			status = http.StatusForbidden
		}
		h.logger.WithField("telegram_user_id", claims.TelegramUserID).Warn("admin login rejected")
		respondJSONError(w, err.Error(), status)
		return
	}

	resp, err := h.setAuthCookies(w, r, *claims.User(), auth.RoleAdmin)
	if err != nil {
		respondJSONError(w, "failed to issue tokens", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Helper methods

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, r *http.Request, user auth.User, role string) (AuthResponse, error) {
	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(user, role)
	if err != nil {
		return AuthResponse{}, err
	}
	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	middleware.SetTokenCookie(w, r, accessToken, accessExpiry)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     middleware.RefreshCookiePath,
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return AuthResponse{
		Authorized:  true,
		User:        &user,
		DisplayName: user.DisplayName(),
		Role:        role,
		AccessToken: accessToken,
		ExpiresAt:   &accessExpiry,
	}, nil
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    "",
		Path:     middleware.RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
