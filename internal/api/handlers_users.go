// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/models"
)

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
)

// Register creates a regular account.
//
// @Summary Register
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account"
// @Success 201 {object} models.APIResponse{data=models.UserResult} "Created"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 409 {object} models.APIResponse "Username or email taken"
// @Router /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.users.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	status, code := http.StatusBadRequest, ErrCodeBadRequest
	if strings.HasSuffix(result.Message, "already exists") {
		status, code = http.StatusConflict, ErrCodeConflict
	}
	respondResult(w, result.Success, http.StatusCreated, status, code, result.Message, result)
}

// Me returns the current user, or null for anonymous requests.
//
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.PublicUser} "User or null"
// @Router /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.users.Me(r.Context())
	if user == nil {
		respondSuccess(w, http.StatusOK, nil)
		return
	}
	respondSuccess(w, http.StatusOK, user)
}

// GetUser returns a user by ID to authenticated callers.
//
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.APIResponse{data=models.PublicUser} "User"
// @Failure 401 {object} models.APIResponse "Not authenticated"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, auth.MsgNotAuthenticated, nil)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, user)
}

// ListUsers returns a page of users.
//
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 200)" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.APIResponse{data=models.ListResponse} "Page of users"
// @Failure 403 {object} models.APIResponse "Not an admin"
// @Router /users/ [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, defaultUserPageSize, maxUserPageSize)

	list, total, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// ListAdmins returns every administrator.
//
// @Summary List admins
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.ListResponse} "Admins"
// @Failure 403 {object} models.APIResponse "Not an admin"
// @Router /users/admins [get]
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.users.ListAdmins(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Items: admins, Total: len(admins), Limit: len(admins)})
}

// PromoteAdmin grants the admin role. The identifier is a user ID or a
// username.
//
// @Summary Promote to admin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or username"
// @Success 200 {object} models.APIResponse{data=models.UserResult} "Promoted"
// @Failure 404 {object} models.APIResponse "User not found"
// @Failure 409 {object} models.APIResponse "Already an admin"
// @Router /users/{id}/promote [post]
func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.PromoteToAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRoleChange(w, result)
}

// DemoteAdmin revokes the admin role.
//
// @Summary Demote admin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID or username"
// @Success 200 {object} models.APIResponse{data=models.UserResult} "Demoted"
// @Failure 404 {object} models.APIResponse "User not found"
// @Failure 409 {object} models.APIResponse "Not an admin or last admin"
// @Router /users/{id}/demote [post]
func (h *Handler) DemoteAdmin(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.DemoteFromAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRoleChange(w, result)
}

func respondRoleChange(w http.ResponseWriter, result *models.UserResult) {
	status, code := http.StatusConflict, ErrCodeConflict
	switch {
	case strings.HasPrefix(result.Message, "User not found"):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case result.User == nil:
		status, code = http.StatusInternalServerError, ErrCodeInternalError
	}
	respondResult(w, result.Success, http.StatusOK, status, code, result.Message, result)
}
