// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/places"
)

const defaultPlacePageSize = 50

// ListPlaces returns places matching the query filters:
// type, city, country_code (comma separated), age, season, admission_free, search, limit, offset.
//
// @Summary List places
// @Tags Places
// @Produce json
// @Param type query string false "Place type"
// @Param city query string false "City (case-insensitive)"
// @Param country_code query string false "ISO 3166-1 alpha-2 codes, comma separated"
// @Param age query int false "Child age 0-18"
// @Param season query string false "Season" Enums(WINTER, SUMMER, ALL)
// @Param admission_free query bool false "Free admission only"
// @Param search query string false "Text search over name, description and city"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.APIResponse{data=models.ListResponse} "Page of places"
// @Failure 400 {object} models.APIResponse "Invalid filter"
// @Router /places/ [get]
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	filter, err := placeFilterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	list, total, err := h.places.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{
		Items:  list,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

func placeFilterFromQuery(r *http.Request) (models.PlaceFilter, error) {
	q := r.URL.Query()
	var filter models.PlaceFilter

	if v := q.Get("type"); v != "" {
		t, ok := models.ParsePlaceType(v)
		if !ok {
			return filter, fmt.Errorf("unknown place type %q", v)
		}
		filter.Type = t
	}
	if v := q.Get("season"); v != "" {
		s, ok := models.ParseSeason(v)
		if !ok {
			return filter, fmt.Errorf("season must be one of WINTER, SUMMER, ALL")
		}
		filter.Season = s
	}
	if v := q.Get("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil || age < 0 || age > 18 {
			return filter, fmt.Errorf("age must be a number between 0 and 18")
		}
		filter.Age = &age
	}
	free, err := getBoolParam(r, "admission_free")
	if err != nil {
		return filter, err
	}
	filter.AdmissionFree = free

	filter.City = strings.TrimSpace(q.Get("city"))
	filter.CountryCodes = countryCodesParam(q.Get("country_code"))
	filter.Search = strings.TrimSpace(q.Get("search"))
	filter.Limit, filter.Offset = pageParams(r, defaultPlacePageSize, places.MaxPageSize)
	return filter, nil
}

// countryCodesParam splits "sk,CZ" into upper-case codes, skipping blanks.
func countryCodesParam(v string) []string {
	var codes []string
	for _, c := range strings.Split(v, ",") {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// GetPlace returns one place. Hidden places are only visible to admins.
//
// @Summary Get place
// @Tags Places
// @Produce json
// @Param id path int true "Place ID"
// @Success 200 {object} models.APIResponse{data=models.Place} "Place"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /places/{id} [get]
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	place, err := h.places.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, place)
}

// CreatePlace adds a place.
//
// @Summary Create place
// @Tags Places
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PlaceInput true "Place"
// @Success 201 {object} models.APIResponse{data=models.Place} "Created"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 403 {object} models.APIResponse "Not an admin"
// @Router /places/ [post]
func (h *Handler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var in models.PlaceInput
	if !decodeJSON(w, r, &in) {
		return
	}

	place, err := h.places.Create(r.Context(), &in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, place)
}

// UpdatePlace replaces a place's editable fields.
//
// @Summary Update place
// @Tags Places
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Place ID"
// @Param request body models.PlaceInput true "Place"
// @Success 200 {object} models.APIResponse{data=models.Place} "Updated"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /places/{id} [put]
func (h *Handler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	var in models.PlaceInput
	if !decodeJSON(w, r, &in) {
		return
	}

	place, err := h.places.Update(r.Context(), id, &in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, place)
}

// DeletePlace removes a place.
//
// @Summary Delete place
// @Tags Places
// @Produce json
// @Security BearerAuth
// @Param id path int true "Place ID"
// @Success 200 {object} models.APIResponse{data=models.MessageResult} "Deleted"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /places/{id} [delete]
func (h *Handler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	if err := h.places.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.MessageResult{
		Success: true,
		Message: fmt.Sprintf("Place %d deleted", id),
	})
}
