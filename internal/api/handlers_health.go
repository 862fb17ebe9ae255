// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/models"
)

// readinessTimeout bounds the database ping.
const readinessTimeout = 2 * time.Second

// HealthLive reports that the process is serving requests.
//
// @Summary Liveness check
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.healthStatus("alive", nil))
}

// HealthReady pings the database. It answers 503 until the database responds.
//
// @Summary Readiness check
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Ready"
// @Failure 503 {object} models.APIResponse "Database unreachable"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := http.StatusOK

	if h.db == nil {
		checks["database"] = "not configured"
		status = http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	if status != http.StatusOK {
		respondJSON(w, status, &models.APIResponse{
			Status:   "error",
			Data:     h.healthStatus("not_ready", checks),
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
			Error:    &models.APIError{Code: ErrCodeServiceUnavailable, Message: "Service is not ready"},
		})
		return
	}
	respondSuccess(w, status, h.healthStatus("ready", checks))
}

func (h *Handler) healthStatus(status string, checks map[string]string) models.HealthStatus {
	return models.HealthStatus{
		Status:      status,
		Version:     h.version,
		Uptime:      time.Since(h.startTime).Seconds(),
		Checks:      checks,
		AIEnabled:   h.enricher != nil,
		GeoEnabled:  h.geocodingEnabled,
		QueueActive: h.queue != nil,
	}
}
