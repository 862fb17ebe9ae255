// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/events"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/resilience"
	"github.com/tomtom215/familymap/internal/scraping"
)

const (
	defaultScrapedPageSize = 50
	maxScrapedPageSize     = 500

	msgEnrichmentDisabled = "Enrichment is disabled: OPENAI_API_KEY is not set"
	msgQueueDisabled      = "Asynchronous enrichment is disabled"
)

// ImportResponse is returned by POST /scraping/import.
type ImportResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Stats   *models.ImportStats `json:"stats"`
}

// EnqueueResponse is returned when an enrichment job is queued.
type EnqueueResponse struct {
	MessageID      string `json:"message_id"`
	ScrapedPlaceID int64  `json:"scraped_place_id"`
	Status         string `json:"status"`
}

// ImportScraped loads <raw_dir>/<type>/<name>.jsonl.
//
// @Summary Import scraped file
// @Tags Scraping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ImportRequest true "File selector"
// @Success 200 {object} models.APIResponse{data=ImportResponse} "Import statistics"
// @Failure 400 {object} models.APIResponse "Invalid selector"
// @Failure 404 {object} models.APIResponse "File not found"
// @Router /scraping/import [post]
func (h *Handler) ImportScraped(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stats, err := h.importer.ImportJSONL(r.Context(), req.Type, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, ImportResponse{Success: true, Message: stats.Summary(), Stats: stats})
}

// ReviewNext returns the next unprocessed scraped place with its post.
//
// @Summary Next review item
// @Tags Scraping
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.ReviewItem} "Review item or null"
// @Router /scraping/review/next [get]
func (h *Handler) ReviewNext(w http.ResponseWriter, r *http.Request) {
	item, err := h.review.Next(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, item)
}

// MarkProcessed flags a scraped place as reviewed.
//
// @Summary Mark processed
// @Tags Scraping
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scraped place ID"
// @Success 200 {object} models.APIResponse{data=models.MessageResult} "Marked"
// @Failure 404 {object} models.APIResponse "Not found"
// @Router /scraping/places/{id}/processed [post]
func (h *Handler) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	msg, err := h.review.MarkProcessed(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.MessageResult{Success: true, Message: msg})
}

// ListScrapedPlaces pages through scraped places, optionally filtered by
// ?processed=true|false.
//
// @Summary List scraped places
// @Tags Scraping
// @Produce json
// @Security BearerAuth
// @Param processed query bool false "Filter by processed flag"
// @Param limit query int false "Page size (max 500)" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} models.APIResponse{data=models.ListResponse} "Page of scraped places"
// @Failure 400 {object} models.APIResponse "Invalid filter"
// @Router /scraping/places [get]
func (h *Handler) ListScrapedPlaces(w http.ResponseWriter, r *http.Request) {
	processed, err := getBoolParam(r, "processed")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	limit, offset := pageParams(r, defaultScrapedPageSize, maxScrapedPageSize)

	list, total, err := h.review.List(r.Context(), processed, limit, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.ListResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// EnrichScrapedPlace turns a scraped place into a hidden place using the
// LLM and the geocoder. With ?async=true the job is queued and 202 returned.
// ?city= passes a city hint to the model.
//
// @Summary Enrich scraped place
// @Tags Scraping
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scraped place ID"
// @Param async query bool false "Queue the job and return 202"
// @Param city query string false "City hint for the model"
// @Success 200 {object} models.APIResponse{data=models.EnrichResult} "Existing place matched"
// @Success 201 {object} models.APIResponse{data=models.EnrichResult} "Place created"
// @Success 202 {object} models.APIResponse{data=EnqueueResponse} "Job queued"
// @Failure 404 {object} models.APIResponse "Scraped place not found"
// @Failure 502 {object} models.APIResponse "Enrichment failed"
// @Failure 503 {object} models.APIResponse "Enrichment or queue disabled"
// @Router /scraping/places/{id}/enrich [post]
func (h *Handler) EnrichScrapedPlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	async, err := getBoolParam(r, "async")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	city := strings.TrimSpace(r.URL.Query().Get("city"))

	if h.enricher == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgEnrichmentDisabled, nil)
		return
	}

	if async != nil && *async {
		h.enqueueEnrichment(w, r, id, city)
		return
	}

	result, err := h.enricher.EnrichWithCity(r.Context(), id, city)
	if err != nil {
		if errors.Is(err, scraping.ErrScrapedPlaceNotFound) || resilience.IsRejected(err) {
			respondServiceError(w, r, err)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Int64("scraped_place_id", id).Msg("Enrichment failed")
		respondError(w, http.StatusBadGateway, ErrCodeExternalServiceFail, "Enrichment failed: "+err.Error(), nil)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, result)
}

func (h *Handler) enqueueEnrichment(w http.ResponseWriter, r *http.Request, id int64, city string) {
	if h.queue == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, msgQueueDisabled, nil)
		return
	}
	if _, err := h.review.Get(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	job := events.EnrichJob{ScrapedPlaceID: id, City: city, RequestedAt: time.Now().UTC()}
	if user := auth.UserFromContext(r.Context()); user != nil {
		job.RequestedBy = user.Username
	}

	msgID, err := h.queue.Enqueue(r.Context(), job)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusAccepted, EnqueueResponse{MessageID: msgID, ScrapedPlaceID: id, Status: "queued"})
}
