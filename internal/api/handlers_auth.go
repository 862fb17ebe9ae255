// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"net/http"

	"github.com/tomtom215/familymap/internal/models"
)

// AuthInfo describes the token service.
//
// @Summary Token service info
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.AuthInfo} "Token settings"
// @Router /auth/info [get]
func (h *Handler) AuthInfo(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.auth.Info())
}

// Login exchanges a username and password for a token pair.
//
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.LoginResult} "Token pair"
// @Failure 400 {object} models.APIResponse "Malformed body"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 429 {object} models.APIResponse "Too many attempts"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondResult(w, result.Success, http.StatusOK, http.StatusUnauthorized, ErrCodeUnauthorized, result.Message, result)
}

// RefreshToken issues a new access token (and a new refresh token when
// rotation is on).
//
// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.APIResponse{data=models.RefreshResult} "Token pair"
// @Failure 401 {object} models.APIResponse "Invalid, expired or blacklisted token"
// @Router /auth/refresh [post]
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	respondResult(w, result.Success, http.StatusOK, http.StatusUnauthorized, ErrCodeUnauthorized, result.Message, result)
}

// Logout blacklists the refresh token.
//
// @Summary Log out
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.APIResponse{data=models.LogoutResult} "Logged out"
// @Failure 400 {object} models.APIResponse "Invalid token"
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.auth.Logout(r.Context(), req.RefreshToken)
	respondResult(w, result.Success, http.StatusOK, http.StatusBadRequest, ErrCodeBadRequest, result.Message, result)
}
