// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"nextping/internal/middleware"
	"nextping/internal/models"
	"nextping/internal/session"
	"nextping/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "NextPing"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

// Register creates a new user account and opens a session for it.
// New accounts always get the user role; admins are only seeded or promoted
// directly in the database.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}

	user, err := a.userStore.Create(req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		TwoFADone: true, // regular users have no second factor
	}); err != nil {
		respondServiceError(w, err)
		return
	}

	slog.Info("user registered", "email", user.Email)
	respondData(w, http.StatusCreated, user)
}

// Login verifies credentials and opens a session. Admin sessions start
// with 2FA pending; the TOTP verify endpoint completes them.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.userStore.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	twoFADone := true
	if user.IsAdmin() && user.TOTPEnabled {
		twoFADone = false
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		TwoFADone: twoFADone,
	}); err != nil {
		respondServiceError(w, err)
		return
	}

	slog.Info("user logged in", "email", user.Email, "two_fa_pending", !twoFADone)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"data":          user,
		"twoFARequired": !twoFADone,
		"twoFASetup":    user.Needs2FASetup(),
	})
}

// Logout destroys the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

// Me returns the authenticated user's profile.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	respondData(w, http.StatusOK, user)
}

// TwoFASetup generates a fresh TOTP secret for the authenticated admin and
// returns it with a QR code PNG for authenticator apps. The secret only
// becomes active after the first successful verify.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		respondServiceError(w, fmt.Errorf("totp generate: %w", err))
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		respondServiceError(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		respondServiceError(w, fmt.Errorf("qr encode: %w", err))
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"secret": key.Secret(),
		"qr":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify checks a TOTP code. On first verification it activates 2FA
// for the account; on login it completes the pending session.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		respondError(w, http.StatusBadRequest, "no 2FA setup in progress")
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid verification code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			respondServiceError(w, err)
			return
		}
		slog.Info("2fa enabled", "email", user.Email)
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil)
}
